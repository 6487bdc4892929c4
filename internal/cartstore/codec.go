package cartstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/digitaldudes/ottcart/internal/domain"
)

var ErrMalformedCart = errors.New("malformed cart record")

// Encode writes the cart as an ordered JSON array of line items.
func Encode(cart domain.Cart) ([]byte, error) {
	items := cart.Items
	if items == nil {
		items = []domain.LineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return data, nil
}

// Decode parses a record written by Encode. A record that would break the cart
// invariants (empty or duplicate ids, quantity below one) is rejected whole.
func Decode(data []byte) (domain.Cart, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return domain.Cart{}, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.ID == "" {
			return domain.Cart{}, fmt.Errorf("%w: line item without id", ErrMalformedCart)
		}
		if item.Quantity < 1 {
			return domain.Cart{}, fmt.Errorf("%w: line item %q has quantity %d", ErrMalformedCart, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return domain.Cart{}, fmt.Errorf("%w: duplicate line item %q", ErrMalformedCart, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	if len(items) == 0 {
		return domain.Cart{}, nil
	}
	return domain.Cart{Items: items}, nil
}
