package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"minishop/internal/domain"
)

// ErrUnknownAction is returned when a wire action carries an unrecognized type tag.
var ErrUnknownAction = errors.New("unknown cart action")

// Action is one of the cart mutations understood by Transition.
// The set is closed: only the types in this file implement it.
type Action interface {
	actionType() string
}

// Initialize replaces the items wholesale. Used once to rehydrate from storage.
type Initialize struct {
	Items []domain.CartItem
}

// AddItem adds one unit of Product, appending a snapshot if it is not in the cart yet.
type AddItem struct {
	Product domain.Product
}

// AddItemBuyNow transitions exactly like AddItem. Callers use the distinct
// tag to navigate to checkout afterwards.
type AddItemBuyNow struct {
	Product domain.Product
}

// UpdateQuantity sets the quantity of the item with ID. Quantities below one are ignored.
type UpdateQuantity struct {
	ID       int64
	Quantity int
}

// RemoveItem drops the item with ID.
type RemoveItem struct {
	ID int64
}

// ClearCart empties the cart.
type ClearCart struct{}

const (
	TypeInitialize     = "INITIALIZE_CART"
	TypeAddItem        = "ADD_ITEM"
	TypeAddItemBuyNow  = "ADD_ITEM_BUY_NOW"
	TypeUpdateQuantity = "UPDATE_QUANTITY"
	TypeRemoveItem     = "REMOVE_ITEM"
	TypeClearCart      = "CLEAR_CART"
)

func (Initialize) actionType() string     { return TypeInitialize }
func (AddItem) actionType() string        { return TypeAddItem }
func (AddItemBuyNow) actionType() string  { return TypeAddItemBuyNow }
func (UpdateQuantity) actionType() string { return TypeUpdateQuantity }
func (RemoveItem) actionType() string     { return TypeRemoveItem }
func (ClearCart) actionType() string      { return TypeClearCart }

// TypeOf returns the wire tag of a, or "" for nil.
func TypeOf(a Action) string {
	if a == nil {
		return ""
	}
	return a.actionType()
}

// WireAction is the JSON form of an action: {"type": "...", "payload": ...}.
type WireAction struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type quantityPayload struct {
	ID       int64 `json:"id"`
	Quantity int   `json:"quantity"`
}

// Decode converts a wire action into its typed form.
func (w WireAction) Decode() (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(w.Type)) {
	case TypeInitialize:
		var items []domain.CartItem
		if err := decodePayload(w.Payload, &items); err != nil {
			return nil, err
		}
		return Initialize{Items: items}, nil
	case TypeAddItem:
		var p domain.Product
		if err := decodePayload(w.Payload, &p); err != nil {
			return nil, err
		}
		return AddItem{Product: p}, nil
	case TypeAddItemBuyNow:
		var p domain.Product
		if err := decodePayload(w.Payload, &p); err != nil {
			return nil, err
		}
		return AddItemBuyNow{Product: p}, nil
	case TypeUpdateQuantity:
		var q quantityPayload
		if err := decodePayload(w.Payload, &q); err != nil {
			return nil, err
		}
		return UpdateQuantity{ID: q.ID, Quantity: q.Quantity}, nil
	case TypeRemoveItem:
		var id int64
		if err := decodePayload(w.Payload, &id); err != nil {
			return nil, err
		}
		return RemoveItem{ID: id}, nil
	case TypeClearCart:
		return ClearCart{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, w.Type)
	}
}

func decodePayload(raw json.RawMessage, dest any) error {
	if len(raw) == 0 {
		return errors.New("payload required")
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode payload: %w", err)
	}
	return nil
}
