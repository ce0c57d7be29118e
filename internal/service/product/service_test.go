package product

import (
	"context"
	"errors"
	"testing"

	"minishop/internal/domain"
	productrepo "minishop/internal/repository/product"
	"github.com/shopspring/decimal"
)

type stubRepo struct {
	list         []domain.Product
	listErr      error
	lastCategory string
	created      domain.Product
	createCalls  int
}

func (s *stubRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	s.lastCategory = category
	return s.list, s.listErr
}

func (s *stubRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	for _, p := range s.list {
		if p.ID == id {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *stubRepo) Create(_ context.Context, p domain.Product) (*domain.Product, error) {
	s.createCalls++
	s.created = p
	p.ID = 1
	return &p, nil
}

func (s *stubRepo) Upsert(ctx context.Context, p domain.Product) (*domain.Product, error) {
	return s.Create(ctx, p)
}

func TestServiceCreateValidation(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	cases := []CreateInput{
		{Price: "1", Description: "d", Category: "c"},
		{Name: "n", Description: "d", Category: "c"},
		{Name: "n", Price: "1", Category: "c"},
		{Name: "n", Price: "1", Description: "d", Category: "   "},
		{Name: "n", Price: "abc", Description: "d", Category: "c"},
		{Name: "n", Price: "-1", Description: "d", Category: "c"},
	}
	for _, in := range cases {
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected invalid input for %+v, got %v", in, err)
		}
	}
	if repo.createCalls != 0 {
		t.Fatalf("repo should not be called on invalid input")
	}
}

func TestServiceCreateHappyPath(t *testing.T) {
	repo := &stubRepo{}
	svc := New(repo)
	img := "/uploads/1-a.png"
	p, err := svc.Create(context.Background(), CreateInput{Name: " Widget ", Price: "10.499", Description: "desc", Category: "Tools", Image: &img})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID != 1 || repo.created.Name != "Widget" || !repo.created.Price.Equal(decimal.RequireFromString("10.5")) {
		t.Fatalf("unexpected created product %+v", repo.created)
	}
	if repo.created.Image == nil || *repo.created.Image != img {
		t.Fatalf("image not passed through")
	}
}

func TestServiceListTrimsCategory(t *testing.T) {
	repo := &stubRepo{}
	if _, err := New(repo).List(context.Background(), "  Tools "); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastCategory != "Tools" {
		t.Fatalf("expected trimmed category, got %q", repo.lastCategory)
	}
}

func TestServiceCategories(t *testing.T) {
	svc := New(productrepo.NewMemory())
	ctx := context.Background()
	for _, c := range []string{"Tools", "Kitchen", "Tools"} {
		if _, err := svc.Create(ctx, CreateInput{Name: "x", Price: "1", Description: "d", Category: c}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("Categories: %v", err)
	}
	if len(cats) != 2 {
		t.Fatalf("expected 2 categories, got %v", cats)
	}
}

func TestServiceCategoriesRepoError(t *testing.T) {
	svc := New(&stubRepo{listErr: errors.New("boom")})
	if _, err := svc.Categories(context.Background()); err == nil || err.Error() != "boom" {
		t.Fatalf("expected repo error, got %v", err)
	}
}
