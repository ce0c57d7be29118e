package cartstore

import (
	"context"
	"errors"
	"io"
	"log"

	"minishop/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	key    string
	logger *log.Logger
}

// NewPostgres stores the cart as a jsonb payload in cart_slots under key.
func NewPostgres(pool *pgxpool.Pool, key string, logger *log.Logger) Repository {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, key: key, logger: logger}
}

func (r *postgresRepo) Load(ctx context.Context) ([]domain.CartItem, bool, error) {
	const q = `
SELECT payload::text
FROM cart_slots
WHERE key = $1
`
	var payload string
	if err := r.pool.QueryRow(ctx, q, r.key).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		r.logger.Printf("cart store: load key=%s error=%v", r.key, err)
		return nil, false, err
	}
	items, err := decode([]byte(payload))
	if err != nil {
		return nil, false, err
	}
	r.logger.Printf("cart store: load key=%s items=%d", r.key, len(items))
	return items, true, nil
}

func (r *postgresRepo) Save(ctx context.Context, items []domain.CartItem) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO cart_slots (key, payload, updated_at)
VALUES ($1, $2::jsonb, now())
ON CONFLICT (key) DO UPDATE
SET payload = EXCLUDED.payload,
    updated_at = EXCLUDED.updated_at
`
	if _, err := r.pool.Exec(ctx, q, r.key, string(data)); err != nil {
		r.logger.Printf("cart store: save key=%s error=%v", r.key, err)
		return err
	}
	return nil
}

func (r *postgresRepo) Clear(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM cart_slots WHERE key = $1`, r.key); err != nil {
		r.logger.Printf("cart store: clear key=%s error=%v", r.key, err)
		return err
	}
	return nil
}
