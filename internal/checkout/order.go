package checkout

import (
	"errors"
	"time"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentKhalti       PaymentMethod = "khalti"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentKhalti || m == PaymentBankTransfer
}

const StatusPending = "pending"

var (
	ErrEmptyCart             = errors.New("cart is empty, nothing to checkout")
	ErrInvalidPaymentMethod  = errors.New("invalid payment method")
	ErrReceiptRequired       = errors.New("payment receipt is required")
	ErrCustomerEmailRequired = errors.New("customer email is required for own-account profiles")
)

type Request struct {
	PaymentMethod  PaymentMethod
	ReceiptRef     string
	CustomerNotes  string
	IdempotencyKey string
}

func (r Request) Validate() error {
	if !r.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	if r.ReceiptRef == "" {
		return ErrReceiptRequired
	}
	return nil
}

type OrderItem struct {
	LineID        string          `json:"lineId"`
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	OttType       string          `json:"ottType"`
	ProfileName   string          `json:"profileName,omitempty"`
	Duration      string          `json:"duration,omitempty"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	CustomerEmail string          `json:"customerEmail,omitempty"`
}

type Order struct {
	ID            string          `json:"id"`
	SessionID     string          `json:"sessionId"`
	Items         []OrderItem     `json:"items"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	ReceiptRef    string          `json:"receiptRef"`
	CustomerNotes string          `json:"customerNotes,omitempty"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
}

func orderItem(item domain.LineItem) OrderItem {
	oi := OrderItem{
		LineID:        item.ID,
		ProductID:     item.ProductID,
		Name:          item.Name,
		OttType:       item.OttType,
		Price:         item.Price,
		Quantity:      item.Quantity,
		Subtotal:      item.Subtotal(),
		CustomerEmail: item.CustomerEmail,
	}
	if item.SelectedProfile != nil {
		oi.ProfileName = item.SelectedProfile.Name
	}
	if item.SelectedPricing != nil {
		oi.Duration = item.SelectedPricing.Duration.String()
	}
	return oi
}
