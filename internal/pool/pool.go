// Package pool provides a borrow/return object pool whose idle entries are
// held through weak pointers, so the garbage collector may reclaim objects
// nobody is using. Reclaimed entries are recreated through the factory on the
// next borrow.
package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

var (
	ErrExhausted = errors.New("pool exhausted")
	ErrClosed    = errors.New("pool closed")
	ErrCreate    = errors.New("pool object creation failed")
	ErrPassivate = errors.New("pool object passivation failed")
	ErrNotActive = errors.New("object is not borrowed from this pool")
)

// Factory creates and recycles pooled objects.
type Factory[T any] interface {
	// Create returns a new object ready to be borrowed.
	Create() (*T, error)
	// Passivate prepares a returned object for reuse. A non-nil error
	// discards the object.
	Passivate(obj *T) error
}

// FactoryFunc adapts a creation function with no passivation step.
type FactoryFunc[T any] func() (*T, error)

func (f FactoryFunc[T]) Create() (*T, error) { return f() }
func (f FactoryFunc[T]) Passivate(*T) error  { return nil }

// Config tunes capacity behaviour. The zero value is an unbounded pool.
type Config struct {
	// MaxTotal caps the number of objects borrowed at once. Zero means no cap.
	MaxTotal int
	// BlockWhenExhausted makes Borrow wait for a free slot instead of failing.
	BlockWhenExhausted bool
	// MaxWait bounds the wait when BlockWhenExhausted is set. Zero waits
	// until the context is done.
	MaxWait time.Duration
}

// Stats is a point-in-time view of pool counters.
type Stats struct {
	Created   int64
	Borrowed  int64
	Returned  int64
	Reclaimed int64
	Destroyed int64
	Active    int
	Idle      int
}

// Pool is safe for concurrent use.
type Pool[T any] struct {
	factory Factory[T]
	cfg     Config
	slots   chan struct{}

	mu     sync.Mutex
	idle   []weak.Pointer[T]
	active map[*T]struct{}
	closed bool

	created   atomic.Int64
	borrowed  atomic.Int64
	returned  atomic.Int64
	reclaimed atomic.Int64
	destroyed atomic.Int64
}

// New creates a pool backed by factory.
func New[T any](factory Factory[T], cfg Config) (*Pool[T], error) {
	if factory == nil {
		return nil, fmt.Errorf("pool factory cannot be nil")
	}
	if cfg.MaxTotal < 0 {
		return nil, fmt.Errorf("max total must not be negative, got %d", cfg.MaxTotal)
	}
	if cfg.MaxWait < 0 {
		return nil, fmt.Errorf("max wait must not be negative, got %s", cfg.MaxWait)
	}

	p := &Pool[T]{
		factory: factory,
		cfg:     cfg,
		active:  make(map[*T]struct{}),
	}
	if cfg.MaxTotal > 0 {
		p.slots = make(chan struct{}, cfg.MaxTotal)
	}
	return p, nil
}

// Borrow hands out an idle object or creates a new one. The caller owns the
// object exclusively until it calls Return or Invalidate.
func (p *Pool[T]) Borrow(ctx context.Context) (*T, error) {
	if err := p.acquire(ctx); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.release()
		return nil, ErrClosed
	}
	for len(p.idle) > 0 {
		last := len(p.idle) - 1
		wp := p.idle[last]
		p.idle[last] = weak.Pointer[T]{}
		p.idle = p.idle[:last]

		if obj := wp.Value(); obj != nil {
			p.active[obj] = struct{}{}
			p.mu.Unlock()
			p.borrowed.Add(1)
			return obj, nil
		}
		p.reclaimed.Add(1)
	}
	p.mu.Unlock()

	obj, err := p.factory.Create()
	if err != nil {
		p.release()
		return nil, fmt.Errorf("%w: %w", ErrCreate, err)
	}
	if obj == nil {
		p.release()
		return nil, fmt.Errorf("%w: factory returned nil", ErrCreate)
	}
	p.created.Add(1)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.release()
		return nil, ErrClosed
	}
	p.active[obj] = struct{}{}
	p.mu.Unlock()

	p.borrowed.Add(1)
	return obj, nil
}

// Return passivates obj and puts it back on the idle list. If passivation
// fails the object is discarded and the error is returned; the borrow slot is
// released in every case.
func (p *Pool[T]) Return(obj *T) error {
	if err := p.deactivate(obj); err != nil {
		return err
	}
	defer p.release()

	if err := p.factory.Passivate(obj); err != nil {
		p.destroyed.Add(1)
		return fmt.Errorf("%w: %w", ErrPassivate, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.destroyed.Add(1)
		return nil
	}
	p.idle = append(p.idle, weak.Make(obj))
	p.returned.Add(1)
	return nil
}

// Invalidate discards a borrowed object without returning it to the pool.
func (p *Pool[T]) Invalidate(obj *T) error {
	if err := p.deactivate(obj); err != nil {
		return err
	}
	p.release()
	p.destroyed.Add(1)
	return nil
}

// Close drops idle objects. Borrowed objects may still be returned; they are
// discarded.
func (p *Pool[T]) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	p.idle = nil
}

// Stats returns current counters. Idle counts entries not yet observed as
// reclaimed.
func (p *Pool[T]) Stats() Stats {
	p.mu.Lock()
	active, idle := len(p.active), 0
	for _, wp := range p.idle {
		if wp.Value() != nil {
			idle++
		}
	}
	p.mu.Unlock()

	return Stats{
		Created:   p.created.Load(),
		Borrowed:  p.borrowed.Load(),
		Returned:  p.returned.Load(),
		Reclaimed: p.reclaimed.Load(),
		Destroyed: p.destroyed.Load(),
		Active:    active,
		Idle:      idle,
	}
}

func (p *Pool[T]) deactivate(obj *T) error {
	if obj == nil {
		return ErrNotActive
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.active[obj]; !ok {
		return ErrNotActive
	}
	delete(p.active, obj)
	return nil
}

func (p *Pool[T]) acquire(ctx context.Context) error {
	if p.slots == nil {
		return nil
	}

	select {
	case p.slots <- struct{}{}:
		return nil
	default:
	}
	if !p.cfg.BlockWhenExhausted {
		return fmt.Errorf("%w: %d objects borrowed", ErrExhausted, p.cfg.MaxTotal)
	}

	if p.cfg.MaxWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.MaxWait)
		defer cancel()
	}
	select {
	case p.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: timed out waiting for a free object: %w", ErrExhausted, ctx.Err())
	}
}

func (p *Pool[T]) release() {
	if p.slots != nil {
		<-p.slots
	}
}
