package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	checkoutsvc "minishop/internal/service/checkout"
)

func (h *handlers) checkoutSummary(c *gin.Context) {
	s := h.cart.State()
	c.JSON(http.StatusOK, gin.H{
		"cart":    toCartResponse(s),
		"summary": checkoutsvc.Summarize(s),
	})
}

func (h *handlers) placeOrder(c *gin.Context) {
	var in checkoutsvc.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout body"})
		return
	}

	order, err := h.checkout.Checkout(c.Request.Context(), in)
	var verr *checkoutsvc.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid checkout", "fields": verr.Fields})
		return
	case errors.Is(err, checkoutsvc.ErrEmptyCart):
		c.JSON(http.StatusConflict, gin.H{"error": "Your cart is empty"})
		return
	case err != nil:
		h.logger.Printf("checkout: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "checkout failed"})
		return
	}
	c.JSON(http.StatusCreated, order)
}
