package product

import (
	"context"
	"sort"
	"sync"
	"time"

	"minishop/internal/domain"
)

type memoryRepo struct {
	mu     sync.RWMutex
	nextID int64
	items  map[int64]domain.Product
	now    func() time.Time
}

// NewMemory is a process-local catalog used when no database is configured.
func NewMemory() Repository {
	return &memoryRepo{nextID: 1, items: map[int64]domain.Product{}, now: time.Now}
}

func (r *memoryRepo) List(_ context.Context, category string) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Product{}
	for _, p := range r.items {
		if category == "" || p.Category == category {
			result = append(result, p)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (r *memoryRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &p, nil
}

func (r *memoryRepo) Create(_ context.Context, in domain.Product) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	in.ID = r.nextID
	r.nextID++
	in.CreatedAt = r.now().UTC()
	in.UpdatedAt = in.CreatedAt
	r.items[in.ID] = in
	return &in, nil
}

func (r *memoryRepo) Upsert(ctx context.Context, in domain.Product) (*domain.Product, error) {
	if in.ID == 0 {
		return r.Create(ctx, in)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now().UTC()
	if existing, ok := r.items[in.ID]; ok {
		in.CreatedAt = existing.CreatedAt
	} else {
		in.CreatedAt = now
	}
	in.UpdatedAt = now
	r.items[in.ID] = in
	if in.ID >= r.nextID {
		r.nextID = in.ID + 1
	}
	return &in, nil
}
