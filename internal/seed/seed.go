package seed

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"minishop/internal/domain"
)

type productSeed struct {
	Name        string
	Price       string
	Category    string
	Description string
}

var demoProducts = []productSeed{
	{Name: "Classic Tee", Price: "19.99", Category: "Apparel", Description: "Soft cotton tee in a relaxed fit"},
	{Name: "Canvas Tote", Price: "14.50", Category: "Accessories", Description: "Sturdy tote for groceries and books"},
	{Name: "Stoneware Mug", Price: "12.99", Category: "Kitchen", Description: "12oz mug, dishwasher safe"},
	{Name: "Pour-Over Kettle", Price: "39.00", Category: "Kitchen", Description: "Gooseneck kettle for slow coffee"},
	{Name: "Desk Lamp", Price: "45.25", Category: "Home", Description: "Adjustable LED lamp with warm light"},
}

// Catalog returns the demo products.
func Catalog() []domain.Product {
	out := make([]domain.Product, 0, len(demoProducts))
	for _, p := range demoProducts {
		out = append(out, domain.Product{
			Name:        p.Name,
			Price:       decimal.RequireFromString(p.Price),
			Category:    p.Category,
			Description: p.Description,
		})
	}
	return out
}

type creator interface {
	Create(ctx context.Context, p domain.Product) (*domain.Product, error)
}

// Fill adds the demo products to repo. Used for the in-memory catalog.
func Fill(ctx context.Context, repo creator) (int, error) {
	n := 0
	for _, p := range Catalog() {
		if _, err := repo.Create(ctx, p); err != nil {
			return n, fmt.Errorf("create product %s: %w", p.Name, err)
		}
		n++
	}
	return n, nil
}

// Apply inserts the demo products for manual testing. A product is skipped
// when one with the same name and category already exists.
func Apply(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	inserted := 0
	for _, p := range Catalog() {
		ok, err := insertProduct(ctx, pool, p)
		if err != nil {
			return inserted, fmt.Errorf("insert product %s: %w", p.Name, err)
		}
		if ok {
			inserted++
		}
	}
	return inserted, nil
}

func insertProduct(ctx context.Context, pool *pgxpool.Pool, p domain.Product) (bool, error) {
	const q = `
INSERT INTO products (name, price, category, description)
SELECT $1, $2::numeric, $3, $4
WHERE NOT EXISTS (
    SELECT 1 FROM products WHERE name = $1 AND category = $3
)
`
	tag, err := pool.Exec(ctx, q, p.Name, p.Price.String(), p.Category, p.Description)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}
