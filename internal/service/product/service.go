package product

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"minishop/internal/domain"
	productrepo "minishop/internal/repository/product"
	"github.com/shopspring/decimal"
)

// ErrInvalidInput is returned when a new product is missing fields or has a bad price.
var ErrInvalidInput = errors.New("invalid product input")

type Service struct {
	repo productrepo.Repository
}

func New(repo productrepo.Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput mirrors the add-product form. Price is the raw form value.
type CreateInput struct {
	Name        string
	Price       string
	Description string
	Category    string
	Image       *string
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, strings.TrimSpace(category))
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, error) {
	name := strings.TrimSpace(in.Name)
	rawPrice := strings.TrimSpace(in.Price)
	description := strings.TrimSpace(in.Description)
	category := strings.TrimSpace(in.Category)
	if name == "" || rawPrice == "" || description == "" || category == "" {
		return nil, fmt.Errorf("%w: missing required fields", ErrInvalidInput)
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q is not a number", ErrInvalidInput, rawPrice)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return s.repo.Create(ctx, domain.Product{
		Name:        name,
		Price:       price.Round(2),
		Description: description,
		Category:    category,
		Image:       in.Image,
	})
}

// Categories returns the distinct categories of the catalog in first-seen order.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	products, err := s.repo.List(ctx, "")
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	out := []string{}
	for _, p := range products {
		if !seen[p.Category] {
			seen[p.Category] = true
			out = append(out, p.Category)
		}
	}
	return out, nil
}
