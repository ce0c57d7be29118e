package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"minishop/internal/cart"
	"minishop/internal/domain"
)

type cartResponse struct {
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Total     decimal.Decimal   `json:"total"`
	Redirect  string            `json:"redirect,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func toCartResponse(s cart.State) cartResponse {
	items := s.Items
	if items == nil {
		items = []domain.CartItem{}
	}
	return cartResponse{Items: items, ItemCount: s.ItemCount, Total: s.Total}
}

type productRef struct {
	ProductID *int64 `json:"productId"`
}

func (h *handlers) getCart(c *gin.Context) {
	c.JSON(http.StatusOK, toCartResponse(h.cart.State()))
}

func (h *handlers) dispatchCart(c *gin.Context) {
	var wire cart.WireAction
	if err := c.ShouldBindJSON(&wire); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid action body"})
		return
	}

	action, err := h.resolveAction(c.Request.Context(), wire)
	switch {
	case errors.Is(err, cart.ErrUnknownAction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.cart.Dispatch(c.Request.Context(), action)
	if errors.Is(err, cart.ErrClosed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "cart unavailable"})
		return
	}

	resp := toCartResponse(state)
	if _, ok := action.(cart.AddItemBuyNow); ok {
		resp.Redirect = "/checkout"
	}
	if err != nil {
		resp.Error = "cart could not be saved"
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// resolveAction decodes wire. Add actions may reference a catalog product by
// id instead of carrying the product inline.
func (h *handlers) resolveAction(ctx context.Context, wire cart.WireAction) (cart.Action, error) {
	kind := strings.ToUpper(strings.TrimSpace(wire.Type))
	if (kind == cart.TypeAddItem || kind == cart.TypeAddItemBuyNow) && len(wire.Payload) > 0 {
		var ref productRef
		if err := json.Unmarshal(wire.Payload, &ref); err == nil && ref.ProductID != nil {
			p, err := h.products.Get(ctx, *ref.ProductID)
			if err != nil {
				return nil, fmt.Errorf("lookup product %d: %w", *ref.ProductID, err)
			}
			if kind == cart.TypeAddItemBuyNow {
				return cart.AddItemBuyNow{Product: *p}, nil
			}
			return cart.AddItem{Product: *p}, nil
		}
	}
	return wire.Decode()
}

// streamNotifications relays cart notifications as server-sent events until
// the client goes away.
func (h *handlers) streamNotifications(c *gin.Context) {
	ch, unsubscribe := h.notifications.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	c.SSEvent("connected", gin.H{"itemCount": h.cart.State().ItemCount})
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			c.SSEvent(string(n.Kind), n)
			c.Writer.Flush()
		case <-ticker.C:
			if _, err := c.Writer.WriteString(": heartbeat\n\n"); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}
