package cart

import (
	"github.com/shopspring/decimal"

	"minishop/internal/domain"
)

// State is a cart snapshot. ItemCount and Total are derived from Items and
// recomputed on every transition.
type State struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
}

// Empty returns the empty cart.
func Empty() State {
	return State{Items: []domain.CartItem{}, Total: decimal.Zero}
}

// Clone returns a copy of s that shares no slice with it.
func (s State) Clone() State {
	items := make([]domain.CartItem, len(s.Items))
	copy(items, s.Items)
	s.Items = items
	return s
}

// Transition returns the state that results from applying a to s. It is pure
// and total: invalid payloads, unknown ids and unknown actions leave the state unchanged.
func Transition(s State, a Action) State {
	switch act := a.(type) {
	case Initialize:
		items := make([]domain.CartItem, len(act.Items))
		copy(items, act.Items)
		return withItems(items)
	case AddItem:
		return addOne(s, act.Product)
	case AddItemBuyNow:
		return addOne(s, act.Product)
	case UpdateQuantity:
		if act.Quantity < 1 {
			return s
		}
		items := make([]domain.CartItem, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ID == act.ID {
				item.Quantity = act.Quantity
			}
			// unreachable through the guard above, kept for callers that bypass it
			if item.Quantity <= 0 {
				continue
			}
			items = append(items, item)
		}
		return withItems(items)
	case RemoveItem:
		items := make([]domain.CartItem, 0, len(s.Items))
		for _, item := range s.Items {
			if item.ID != act.ID {
				items = append(items, item)
			}
		}
		return withItems(items)
	case ClearCart:
		return Empty()
	default:
		return s
	}
}

func addOne(s State, p domain.Product) State {
	items := make([]domain.CartItem, 0, len(s.Items)+1)
	found := false
	for _, item := range s.Items {
		if item.ID == p.ID {
			item.Quantity++
			found = true
		}
		items = append(items, item)
	}
	if !found {
		items = append(items, domain.ItemFromProduct(p, 1))
	}
	return withItems(items)
}

func withItems(items []domain.CartItem) State {
	count := 0
	total := decimal.Zero
	for _, item := range items {
		count += item.Quantity
		total = total.Add(item.LineTotal())
	}
	return State{Items: items, ItemCount: count, Total: total}
}
