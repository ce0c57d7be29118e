package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"minishop/internal/cart"
	"minishop/internal/domain"
)

type stubCart struct {
	state    cart.State
	drainErr error
	drains   int
	// beforeDrain runs just before the clear, as a concurrent change would.
	beforeDrain cart.Action
}

func (s *stubCart) State() cart.State {
	return s.state
}

func (s *stubCart) Drain(_ context.Context) (cart.State, error) {
	s.drains++
	if s.beforeDrain != nil {
		s.state = cart.Transition(s.state, s.beforeDrain)
	}
	if errors.Is(s.drainErr, cart.ErrClosed) {
		return cart.State{}, s.drainErr
	}
	prev := s.state
	s.state = cart.Transition(s.state, cart.ClearCart{})
	return prev, s.drainErr
}

func validInput() Input {
	return Input{
		Email:      "buyer@example.com",
		Name:       "Ada Buyer",
		Address:    "1 Main St",
		CardNumber: "4242 4242 4242 4242",
		Expiry:     "12/29",
		CVV:        "123",
	}
}

func filledCart() *stubCart {
	s := cart.Empty()
	s = cart.Transition(s, cart.AddItem{Product: domain.Product{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10)}})
	s = cart.Transition(s, cart.UpdateQuantity{ID: 1, Quantity: 3})
	s = cart.Transition(s, cart.AddItem{Product: domain.Product{ID: 2, Name: "Gadget", Price: decimal.RequireFromString("4.99")}})
	return &stubCart{state: s}
}

func TestValidate_RequiredFields(t *testing.T) {
	err := Validate(Input{})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	want := map[string]string{
		"email":      "Email is required",
		"cardNumber": "Card number is required",
		"expiry":     "Expiry date is required",
		"cvv":        "CVV is required",
		"name":       "Name on card is required",
		"address":    "Shipping address is required",
	}
	for k, v := range want {
		if verr.Fields[k] != v {
			t.Fatalf("field %s: expected %q, got %q", k, v, verr.Fields[k])
		}
	}
}

func TestValidate_Formats(t *testing.T) {
	in := validInput()
	in.Email = "nope"
	in.CardNumber = "1234"
	in.Expiry = "13/25"
	in.CVV = "12"
	var verr *ValidationError
	if !errors.As(Validate(in), &verr) {
		t.Fatalf("expected validation error")
	}
	if verr.Fields["email"] != "Email is invalid" ||
		verr.Fields["cardNumber"] != "Card number must be 16 digits" ||
		verr.Fields["expiry"] != "Expiry date format should be MM/YY" ||
		verr.Fields["cvv"] != "CVV must be 3 or 4 digits" {
		t.Fatalf("unexpected fields %+v", verr.Fields)
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %+v", verr.Fields)
	}
}

func TestValidate_AcceptsExpiryWithoutSlash(t *testing.T) {
	in := validInput()
	in.Expiry = "0130"
	in.CVV = "1234"
	if err := Validate(in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	sum := Summarize(filledCart().state)
	if !sum.Subtotal.Equal(decimal.RequireFromString("34.99")) ||
		!sum.Tax.Equal(decimal.RequireFromString("2.80")) ||
		!sum.Shipping.IsZero() ||
		!sum.Total.Equal(decimal.RequireFromString("37.79")) {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestCheckout_EmptyCart(t *testing.T) {
	svc := New(&stubCart{state: cart.Empty()})
	if _, err := svc.Checkout(context.Background(), validInput()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_InvalidDoesNotClear(t *testing.T) {
	c := filledCart()
	svc := New(c)
	if _, err := svc.Checkout(context.Background(), Input{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if c.drains != 0 || c.state.ItemCount != 4 {
		t.Fatalf("cart should not be touched, drains=%d state=%+v", c.drains, c.state)
	}
}

func TestCheckout_Success(t *testing.T) {
	c := filledCart()
	svc := New(c)
	svc.newID = func() string { return "order-1" }
	svc.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "order-1" || order.CardLast4 != "4242" || order.ItemCount != 4 || len(order.Items) != 2 {
		t.Fatalf("unexpected order %+v", order)
	}
	if !order.Total.Equal(decimal.RequireFromString("37.79")) {
		t.Fatalf("unexpected total %s", order.Total)
	}
	if c.drains != 1 {
		t.Fatalf("expected a single clear, got %d", c.drains)
	}
	if c.state.ItemCount != 0 {
		t.Fatalf("cart not cleared: %+v", c.state)
	}
}

func TestCheckout_ClearError(t *testing.T) {
	c := filledCart()
	c.drainErr = cart.ErrClosed
	if _, err := New(c).Checkout(context.Background(), validInput()); !errors.Is(err, cart.ErrClosed) {
		t.Fatalf("expected wrapped ErrClosed, got %v", err)
	}
}

func TestCheckout_OrderIncludesChangeBeforeClear(t *testing.T) {
	c := filledCart()
	c.beforeDrain = cart.AddItem{Product: domain.Product{ID: 3, Name: "Lamp", Price: decimal.NewFromInt(5)}}
	svc := New(c)

	order, err := svc.Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order.Items) != 3 || order.Items[2].ID != 3 || order.ItemCount != 5 {
		t.Fatalf("late add missing from order: %+v", order.Items)
	}
	if !order.Subtotal.Equal(decimal.RequireFromString("39.99")) {
		t.Fatalf("unexpected subtotal %s", order.Subtotal)
	}
	if c.state.ItemCount != 0 {
		t.Fatalf("cart not cleared: %+v", c.state)
	}
}

func TestCheckout_PersistFailureStillPlacesOrder(t *testing.T) {
	c := filledCart()
	c.drainErr = fmt.Errorf("%w: clear cart: disk full", cart.ErrNotPersisted)
	order, err := New(c).Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ItemCount != 4 {
		t.Fatalf("unexpected order %+v", order)
	}
}

func TestCheckout_ClearedConcurrently(t *testing.T) {
	c := filledCart()
	c.beforeDrain = cart.ClearCart{}
	if _, err := New(c).Checkout(context.Background(), validInput()); !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckout_WithProvider(t *testing.T) {
	p := cart.NewProvider(nil, nil)
	p.Start(context.Background())
	defer p.Close()
	if _, err := p.Dispatch(context.Background(), cart.AddItem{Product: domain.Product{ID: 1, Name: "Widget", Price: decimal.NewFromInt(10)}}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	order, err := New(p).Checkout(context.Background(), validInput())
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}
	if order.ItemCount != 1 || p.State().ItemCount != 0 {
		t.Fatalf("unexpected order=%+v cart=%+v", order, p.State())
	}
}
