package catalog

import (
	"errors"
	"fmt"

	"github.com/digitaldudes/ottcart/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrPricingNotFound    = errors.New("pricing option not found")
)

type PricingOption struct {
	Duration domain.Duration `json:"duration"`
	Price    decimal.Decimal `json:"price"`
}

type ProfileType struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ScreenCount        int             `json:"screenCount"`
	Quality            string          `json:"quality"`
	RequiresOwnAccount bool            `json:"requiresOwnAccount"`
	PricingOptions     []PricingOption `json:"pricingOptions"`
}

type Product struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	OttType     string        `json:"ottType"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	ImageURL    string        `json:"image"`
	Status      string        `json:"status"`
	Profiles    []ProfileType `json:"profileTypes"`
}

// MinPrice is the cheapest pricing option across all profiles, zero when the
// product has none.
func (p *Product) MinPrice() decimal.Decimal {
	var lowest decimal.Decimal
	found := false
	for _, profile := range p.Profiles {
		for _, option := range profile.PricingOptions {
			if !found || option.Price.LessThan(lowest) {
				lowest = option.Price
				found = true
			}
		}
	}
	return lowest
}

func pricingOption(value int64, unit, price string) (PricingOption, error) {
	amount, err := decimal.NewFromString(price)
	if err != nil {
		return PricingOption{}, fmt.Errorf("invalid price %q: %w", price, err)
	}
	return PricingOption{
		Duration: domain.Duration{Value: int(value), Unit: unit},
		Price:    amount,
	}, nil
}

func (p *Product) Profile(id string) (ProfileType, bool) {
	for _, profile := range p.Profiles {
		if profile.ID == id {
			return profile, true
		}
	}
	return ProfileType{}, false
}

// Selection resolves a product, profile and pricing choice into a cart line
// item. The returned item has no quantity; the cart sets it on add.
func Selection(p *Product, profileID string, pricingIndex int) (domain.LineItem, error) {
	if p == nil {
		return domain.LineItem{}, ErrProductNotFound
	}
	if p.Status != StatusActive {
		return domain.LineItem{}, ErrProductUnavailable
	}

	profile, ok := p.Profile(profileID)
	if !ok {
		return domain.LineItem{}, ErrProfileNotFound
	}
	if pricingIndex < 0 || pricingIndex >= len(profile.PricingOptions) {
		return domain.LineItem{}, ErrPricingNotFound
	}
	option := profile.PricingOptions[pricingIndex]

	selectedProfile := &domain.Profile{
		ProfileID:          profile.ID,
		Name:               profile.Name,
		ScreenCount:        profile.ScreenCount,
		Quality:            profile.Quality,
		RequiresOwnAccount: profile.RequiresOwnAccount,
	}
	selectedPricing := &domain.Pricing{
		Duration: option.Duration,
		Price:    option.Price,
	}

	return domain.LineItem{
		ID:              domain.LineID(p.ID, selectedProfile, selectedPricing),
		ProductID:       p.ID,
		Name:            p.Name,
		OttType:         p.OttType,
		Price:           option.Price,
		SelectedProfile: selectedProfile,
		SelectedPricing: selectedPricing,
	}, nil
}
