package checkout

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"minishop/internal/cart"
	"minishop/internal/domain"
)

// ErrEmptyCart is returned when checking out a cart with no items.
var ErrEmptyCart = errors.New("cart is empty")

var (
	taxRate       = decimal.RequireFromString("0.08")
	emailPattern  = regexp.MustCompile(`\S+@\S+\.\S+`)
	cardPattern   = regexp.MustCompile(`^\d{16}$`)
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/?([0-9]{2})$`)
	cvvPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// ValidationError maps form field names to messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid checkout: " + strings.Join(parts, "; ")
}

type cartDispatcher interface {
	State() cart.State
	Drain(ctx context.Context) (cart.State, error)
}

type Input struct {
	Email      string `json:"email"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	CardNumber string `json:"cardNumber"`
	Expiry     string `json:"expiry"`
	CVV        string `json:"cvv"`
}

// Order is the mock receipt. No payment is taken.
type Order struct {
	ID        string            `json:"id"`
	Email     string            `json:"email"`
	Name      string            `json:"name"`
	Address   string            `json:"address"`
	CardLast4 string            `json:"cardLast4"`
	Items     []domain.CartItem `json:"items"`
	ItemCount int               `json:"itemCount"`
	Subtotal  decimal.Decimal   `json:"subtotal"`
	Tax       decimal.Decimal   `json:"tax"`
	Shipping  decimal.Decimal   `json:"shipping"`
	Total     decimal.Decimal   `json:"total"`
	PlacedAt  time.Time         `json:"placedAt"`
}

// Summary is the price breakdown shown before the purchase.
type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Shipping decimal.Decimal `json:"shipping"`
	Total    decimal.Decimal `json:"total"`
}

type Service struct {
	cart  cartDispatcher
	now   func() time.Time
	newID func() string
}

func New(c cartDispatcher) *Service {
	return &Service{cart: c, now: time.Now, newID: func() string { return uuid.NewString() }}
}

// Summarize prices the cart: 8% tax, free shipping.
func Summarize(s cart.State) Summary {
	subtotal := s.Total
	tax := subtotal.Mul(taxRate).Round(2)
	shipping := decimal.Zero
	return Summary{Subtotal: subtotal, Tax: tax, Shipping: shipping, Total: subtotal.Add(tax).Add(shipping)}
}

// Validate checks the checkout form and returns a *ValidationError listing every bad field.
func Validate(in Input) error {
	fields := map[string]string{}

	switch {
	case in.Email == "":
		fields["email"] = "Email is required"
	case !emailPattern.MatchString(in.Email):
		fields["email"] = "Email is invalid"
	}

	card := strings.Join(strings.Fields(in.CardNumber), "")
	switch {
	case in.CardNumber == "":
		fields["cardNumber"] = "Card number is required"
	case !cardPattern.MatchString(card):
		fields["cardNumber"] = "Card number must be 16 digits"
	}

	switch {
	case in.Expiry == "":
		fields["expiry"] = "Expiry date is required"
	case !expiryPattern.MatchString(in.Expiry):
		fields["expiry"] = "Expiry date format should be MM/YY"
	}

	switch {
	case in.CVV == "":
		fields["cvv"] = "CVV is required"
	case !cvvPattern.MatchString(in.CVV):
		fields["cvv"] = "CVV must be 3 or 4 digits"
	}

	if in.Name == "" {
		fields["name"] = "Name on card is required"
	}
	if in.Address == "" {
		fields["address"] = "Shipping address is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Checkout validates the form, then empties the cart and prices the items it
// held. The order is built from what the clear removed, so changes racing
// with checkout are either in the order or still in the cart.
func (s *Service) Checkout(ctx context.Context, in Input) (*Order, error) {
	if len(s.cart.State().Items) == 0 {
		return nil, ErrEmptyCart
	}
	if err := Validate(in); err != nil {
		return nil, err
	}

	taken, err := s.cart.Drain(ctx)
	if err != nil && !errors.Is(err, cart.ErrNotPersisted) {
		return nil, fmt.Errorf("clear cart after checkout: %w", err)
	}
	if len(taken.Items) == 0 {
		return nil, ErrEmptyCart
	}

	sum := Summarize(taken)
	card := strings.Join(strings.Fields(in.CardNumber), "")
	return &Order{
		ID:        s.newID(),
		Email:     in.Email,
		Name:      in.Name,
		Address:   in.Address,
		CardLast4: card[len(card)-4:],
		Items:     taken.Items,
		ItemCount: taken.ItemCount,
		Subtotal:  sum.Subtotal,
		Tax:       sum.Tax,
		Shipping:  sum.Shipping,
		Total:     sum.Total,
		PlacedAt:  s.now().UTC(),
	}, nil
}
