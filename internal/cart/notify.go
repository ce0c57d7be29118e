package cart

import (
	"fmt"
	"time"

	"minishop/internal/domain"
)

// NotificationKind classifies a cart change.
type NotificationKind string

const (
	KindAdded   NotificationKind = "added"
	KindUpdated NotificationKind = "updated"
	KindRemoved NotificationKind = "removed"
	KindCleared NotificationKind = "cleared"
)

// Notification is a user-facing message about a cart change.
type Notification struct {
	Kind      NotificationKind `json:"kind"`
	ProductID int64            `json:"productId,omitempty"`
	Message   string           `json:"message"`
	At        time.Time        `json:"at"`
}

// Observer compares consecutive snapshots and reports what changed. The first
// snapshot it sees is only recorded.
type Observer struct {
	prev   State
	primed bool
	now    func() time.Time
}

// NewObserver returns an observer that has not seen a snapshot yet.
func NewObserver() *Observer {
	return &Observer{now: time.Now}
}

// Observe records next and returns the notifications for the change from the
// previously observed snapshot. Scans stop at the first match where noted, so
// simultaneous changes to several items report only the first one found.
func (o *Observer) Observe(next State) []Notification {
	if !o.primed {
		o.primed = true
		o.prev = next
		return nil
	}
	prev := o.prev
	o.prev = next

	at := o.now().UTC()
	var out []Notification
	emit := func(kind NotificationKind, item domain.CartItem, format string) {
		out = append(out, Notification{Kind: kind, ProductID: item.ID, Message: fmt.Sprintf(format, item.Name), At: at})
	}

	if next.ItemCount > prev.ItemCount {
		if item, ok := firstMissing(next.Items, prev.Items); ok {
			emit(KindAdded, item, "%s added to cart!")
		} else {
			for _, item := range next.Items {
				if before, ok := findItem(prev.Items, item.ID); ok && item.Quantity > before.Quantity {
					emit(KindUpdated, item, "Updated %s quantity in cart!")
					break
				}
			}
		}
	}

	if next.ItemCount < prev.ItemCount {
		for _, before := range prev.Items {
			current, ok := findItem(next.Items, before.ID)
			if !ok {
				emit(KindRemoved, before, "%s removed from cart!")
				break
			}
			if current.Quantity < before.Quantity {
				if current.Quantity == 0 {
					emit(KindRemoved, before, "%s removed from cart!")
				} else {
					emit(KindUpdated, before, "Updated %s quantity in cart!")
				}
			}
		}
	}

	if len(prev.Items) > 0 && len(next.Items) == 0 {
		out = append(out, Notification{Kind: KindCleared, Message: "Cart cleared!", At: at})
	}
	return out
}

func firstMissing(items, from []domain.CartItem) (domain.CartItem, bool) {
	for _, item := range items {
		if _, ok := findItem(from, item.ID); !ok {
			return item, true
		}
	}
	return domain.CartItem{}, false
}

func findItem(items []domain.CartItem, id int64) (domain.CartItem, bool) {
	for _, item := range items {
		if item.ID == id {
			return item, true
		}
	}
	return domain.CartItem{}, false
}
