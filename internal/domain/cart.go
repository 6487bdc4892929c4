package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type Duration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

func (d Duration) String() string {
	return fmt.Sprintf("%d-%s", d.Value, d.Unit)
}

type Profile struct {
	ProfileID          string `json:"profileId"`
	Name               string `json:"name"`
	ScreenCount        int    `json:"screenCount"`
	Quality            string `json:"quality"`
	RequiresOwnAccount bool   `json:"requiresOwnAccount"`
}

type Pricing struct {
	Duration Duration        `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

// LineItem is one product+profile+pricing selection in a cart. Name, OttType,
// Price and the selections are captured when the item is first added.
type LineItem struct {
	ID              string          `json:"id"`
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	OttType         string          `json:"ottType"`
	Price           decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
	SelectedProfile *Profile        `json:"selectedProfile,omitempty"`
	SelectedPricing *Pricing        `json:"selectedPricing,omitempty"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
}

func (i LineItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// RequiresEmail reports whether the selected profile is activated on the
// customer's own account.
func (i LineItem) RequiresEmail() bool {
	return i.SelectedProfile != nil && i.SelectedProfile.RequiresOwnAccount
}

// LineID builds the line key for a product selection. Two selections share a
// line only when product, profile and pricing duration all match.
func LineID(productID string, profile *Profile, pricing *Pricing) string {
	parts := []string{productID}
	if profile != nil {
		parts = append(parts, profile.ProfileID)
	}
	if pricing != nil {
		parts = append(parts, pricing.Duration.String())
	}
	return strings.Join(parts, ":")
}

// Cart is an insertion-ordered set of line items, at most one per ID.
// Methods never modify the receiver; mutating operations return a new Cart.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) Len() int {
	return len(c.Items)
}

func (c Cart) Find(id string) (LineItem, bool) {
	if i := c.index(id); i >= 0 {
		return c.Items[i], true
	}
	return LineItem{}, false
}

func (c Cart) Add(item LineItem) Cart {
	if i := c.index(item.ID); i >= 0 {
		items := c.clone()
		items[i].Quantity++
		return Cart{Items: items}
	}

	item.Quantity = 1
	items := make([]LineItem, 0, len(c.Items)+1)
	items = append(items, c.Items...)
	items = append(items, item)
	return Cart{Items: items}
}

func (c Cart) Remove(id string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}

	items := make([]LineItem, 0, len(c.Items)-1)
	items = append(items, c.Items[:i]...)
	items = append(items, c.Items[i+1:]...)
	return Cart{Items: items}
}

func (c Cart) SetQuantity(id string, quantity int) Cart {
	if quantity <= 0 {
		return c.Remove(id)
	}

	i := c.index(id)
	if i < 0 {
		return c
	}
	items := c.clone()
	items[i].Quantity = quantity
	return Cart{Items: items}
}

func (c Cart) SetEmail(id, email string) Cart {
	i := c.index(id)
	if i < 0 {
		return c
	}
	items := c.clone()
	items[i].CustomerEmail = email
	return Cart{Items: items}
}

// Subtract takes the quantities of ordered out of c, dropping lines that reach
// zero. Lines added or raised after ordered was taken stay in the cart.
func (c Cart) Subtract(ordered Cart) Cart {
	if len(ordered.Items) == 0 {
		return c
	}
	items := make([]LineItem, 0, len(c.Items))
	for _, item := range c.Items {
		if o, ok := ordered.Find(item.ID); ok {
			item.Quantity -= o.Quantity
		}
		if item.Quantity > 0 {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return Cart{}
	}
	return Cart{Items: items}
}

func (c Cart) Clear() Cart {
	return Cart{}
}

// Total is the sum of price*quantity over all lines.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the number of units in the cart, not the number of lines.
func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) index(id string) int {
	for i := range c.Items {
		if c.Items[i].ID == id {
			return i
		}
	}
	return -1
}

func (c Cart) clone() []LineItem {
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return items
}
