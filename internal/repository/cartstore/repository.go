package cartstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"minishop/internal/domain"
)

// DefaultKey is the slot the cart is saved under.
const DefaultKey = "cart"

// ErrMalformedCart wraps a stored payload that could not be parsed.
var ErrMalformedCart = errors.New("malformed stored cart")

// Repository is a single key-value slot holding the serialized cart items.
// Load reports found=false when nothing has been saved.
type Repository interface {
	Load(ctx context.Context) ([]domain.CartItem, bool, error)
	Save(ctx context.Context, items []domain.CartItem) error
	Clear(ctx context.Context) error
}

func encode(items []domain.CartItem) ([]byte, error) {
	if items == nil {
		items = []domain.CartItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode cart: %w", err)
	}
	return data, nil
}

func decode(data []byte) ([]domain.CartItem, error) {
	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedCart, err)
	}
	return items, nil
}
