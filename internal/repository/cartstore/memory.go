package cartstore

import (
	"context"
	"sync"

	"minishop/internal/domain"
)

type memoryRepo struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemory keeps the serialized cart in process memory.
func NewMemory() Repository {
	return &memoryRepo{}
}

func (r *memoryRepo) Load(_ context.Context) ([]domain.CartItem, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.data == nil {
		return nil, false, nil
	}
	items, err := decode(r.data)
	if err != nil {
		return nil, false, err
	}
	return items, true, nil
}

func (r *memoryRepo) Save(_ context.Context, items []domain.CartItem) error {
	data, err := encode(items)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.data = data
	r.mu.Unlock()
	return nil
}

func (r *memoryRepo) Clear(_ context.Context) error {
	r.mu.Lock()
	r.data = nil
	r.mu.Unlock()
	return nil
}
