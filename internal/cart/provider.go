package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"minishop/internal/domain"
)

var (
	// ErrClosed is returned by Dispatch once the provider has been closed.
	ErrClosed = errors.New("cart provider closed")
	// ErrNotPersisted wraps store failures. The action was still applied.
	ErrNotPersisted = errors.New("cart not persisted")
)

// persistTimeout bounds a single store write. Writes are detached from the
// caller's context so an abandoned request cannot leave the store behind.
const persistTimeout = 5 * time.Second

// Store persists the cart items between runs.
type Store interface {
	Load(ctx context.Context) ([]domain.CartItem, bool, error)
	Save(ctx context.Context, items []domain.CartItem) error
	Clear(ctx context.Context) error
}

// Sink receives the notifications produced by cart changes.
type Sink interface {
	Publish(ctx context.Context, n Notification) error
}

type request struct {
	ctx    context.Context
	action Action
	reply  chan result
}

type result struct {
	prev  State
	state State
	err   error
}

// Provider owns the single cart of the process. One goroutine applies
// actions in arrival order; everything else talks to it through Dispatch.
type Provider struct {
	store    Store
	logger   *log.Logger
	sinks    []Sink
	observer *Observer

	mu    sync.RWMutex
	state State

	requests chan request
	ready    chan struct{}
	done     chan struct{}

	lifecycle    sync.Mutex
	started      bool
	closed       bool
	cancel       context.CancelFunc
	rehydrateErr error
}

// NewProvider builds a provider with an empty cart. A nil store keeps the
// cart in memory only.
func NewProvider(store Store, logger *log.Logger, sinks ...Sink) *Provider {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Provider{
		store:    store,
		logger:   logger,
		sinks:    sinks,
		observer: NewObserver(),
		state:    Empty(),
		requests: make(chan request, 64),
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the owner loop. The loop first rehydrates from the store;
// actions dispatched before that completes are queued and applied after it.
func (p *Provider) Start(ctx context.Context) {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true
	ctx, p.cancel = context.WithCancel(ctx)
	go p.run(ctx)
}

// Close stops the owner loop and waits for it to exit.
func (p *Provider) Close() {
	p.lifecycle.Lock()
	if p.closed {
		p.lifecycle.Unlock()
		return
	}
	p.closed = true
	started := p.started
	if started {
		p.cancel()
	}
	p.lifecycle.Unlock()

	if started {
		<-p.done
		return
	}
	close(p.done)
}

// Ready is closed once the rehydration step has finished.
func (p *Provider) Ready() <-chan struct{} {
	return p.ready
}

// RehydrateErr reports why stored items could not be loaded. It is only
// meaningful after Ready is closed.
func (p *Provider) RehydrateErr() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.rehydrateErr
}

// State returns a copy of the current cart.
func (p *Provider) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Clone()
}

// Dispatch applies a and returns the resulting cart. The state is replaced
// even when persisting it fails; that failure is returned wrapping
// ErrNotPersisted. Once queued, the action is applied and persisted even if
// ctx is cancelled, and Dispatch waits for it.
func (p *Provider) Dispatch(ctx context.Context, a Action) (State, error) {
	res, err := p.send(ctx, a)
	if err != nil {
		return State{}, err
	}
	return res.state, res.err
}

// Drain clears the cart and returns the items it held, in one step of the
// owner loop. Nothing dispatched concurrently can land between the two.
func (p *Provider) Drain(ctx context.Context) (State, error) {
	res, err := p.send(ctx, ClearCart{})
	if err != nil {
		return State{}, err
	}
	return res.prev, res.err
}

func (p *Provider) send(ctx context.Context, a Action) (result, error) {
	req := request{ctx: ctx, action: a, reply: make(chan result, 1)}
	select {
	case p.requests <- req:
	case <-p.done:
		return result{}, ErrClosed
	case <-ctx.Done():
		return result{}, ctx.Err()
	}
	select {
	case res := <-req.reply:
		return res, nil
	case <-p.done:
		return result{}, ErrClosed
	}
}

func (p *Provider) run(ctx context.Context) {
	defer close(p.done)

	p.rehydrate(ctx)
	close(p.ready)

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-p.requests:
			req.reply <- p.apply(req.ctx, req.action)
		}
	}
}

func (p *Provider) rehydrate(ctx context.Context) {
	initial := Empty()
	if p.store != nil {
		items, ok, err := p.store.Load(ctx)
		switch {
		case err != nil:
			p.logger.Printf("cart: rehydrate failed, starting empty: %v", err)
			p.mu.Lock()
			p.rehydrateErr = err
			p.mu.Unlock()
		case ok && len(items) > 0:
			initial = Transition(initial, Initialize{Items: items})
			p.logger.Printf("cart: rehydrated items=%d count=%d", len(initial.Items), initial.ItemCount)
		}
	}
	p.mu.Lock()
	p.state = initial
	p.mu.Unlock()
	p.observer.Observe(initial)
}

func (p *Provider) apply(reqCtx context.Context, a Action) result {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(reqCtx), persistTimeout)
	defer cancel()

	p.mu.Lock()
	prev := p.state
	next := Transition(prev, a)
	p.state = next
	p.mu.Unlock()

	err := p.persist(ctx, a, next)
	if err != nil {
		p.logger.Printf("cart: persist action=%s error=%v", TypeOf(a), err)
	}

	for _, n := range p.observer.Observe(next) {
		for _, sink := range p.sinks {
			if perr := sink.Publish(ctx, n); perr != nil {
				p.logger.Printf("cart: publish notification kind=%s error=%v", n.Kind, perr)
			}
		}
	}
	return result{prev: prev.Clone(), state: next.Clone(), err: err}
}

func (p *Provider) persist(ctx context.Context, a Action, next State) error {
	if p.store == nil {
		return nil
	}
	switch a.(type) {
	case nil, Initialize:
		return nil
	case ClearCart:
		if err := p.store.Clear(ctx); err != nil {
			return fmt.Errorf("%w: clear cart: %w", ErrNotPersisted, err)
		}
	default:
		if err := p.store.Save(ctx, next.Items); err != nil {
			return fmt.Errorf("%w: save cart: %w", ErrNotPersisted, err)
		}
	}
	return nil
}
