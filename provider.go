package confcrypt

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Provider encrypts and decrypts configuration values. Implementations are
// safe for concurrent use.
type Provider interface {
	// Encrypt returns base64(IV ‖ ciphertext ‖ tag) for the UTF-8 value.
	Encrypt(value string) (string, error)

	// Decrypt reverses Encrypt. Authentication failures match ErrWrongKey.
	Decrypt(value string) (string, error)

	ID() string
	State() State

	// Close destroys the secret key and drops cipher state. Later
	// operations fail with ErrProviderClosed.
	Close() error
}

// State is the lifecycle stage of a provider. Keys are never replaced in
// place; rotating a key means building a new provider.
type State int32

const (
	StateUninitialized State = iota
	StateKeyed
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateKeyed:
		return "keyed"
	case StateReady:
		return "ready"
	case StateClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// providerCore is the state shared by both strategies.
type providerCore struct {
	id       string
	strategy string
	engine   *Engine
	key      *SecretKey
	logger   *slog.Logger
	hook     ObservabilityHook

	state atomic.Int32

	// lifecycle is held shared by operations and exclusively by Close
	lifecycle sync.RWMutex
	closed    bool
}

func newProviderCore(strategy string, engine *Engine, key *SecretKey, o providerOptions) (*providerCore, error) {
	if engine == nil {
		return nil, newConfigurationError(fmt.Errorf("engine is required"))
	}
	if key == nil || !key.IsAlive() {
		return nil, newConfigurationError(fmt.Errorf("a live secret key is required"))
	}

	id := uuid.NewString()
	return &providerCore{
		id:       id,
		strategy: strategy,
		engine:   engine,
		key:      key,
		logger:   o.logger.With(slog.String("provider_id", id), slog.String("strategy", strategy)),
		hook:     o.hook(),
	}, nil
}

func (p *providerCore) ID() string {
	return p.id
}

func (p *providerCore) State() State {
	return State(p.state.Load())
}

func (p *providerCore) setState(s State) {
	p.state.Store(int32(s))
}

func (p *providerCore) metadata() map[string]any {
	return map[string]any{
		"provider_id": p.id,
		"strategy":    p.strategy,
	}
}

// run executes one operation under the shared lifecycle lock and reports it
// to the hooks.
func (p *providerCore) run(operation string, fn func() (string, error)) (string, error) {
	meta := p.metadata()
	p.hook.OnOperationStart(operation, meta)
	start := time.Now()

	out, err := p.guarded(fn)

	if err != nil {
		meta["error_kind"] = errorKind(err)
	}
	p.hook.OnOperationComplete(operation, time.Since(start), err, meta)
	if err != nil {
		return "", err
	}
	return out, nil
}

func (p *providerCore) guarded(fn func() (string, error)) (string, error) {
	p.lifecycle.RLock()
	defer p.lifecycle.RUnlock()
	if p.closed {
		return "", ErrProviderClosed
	}
	return fn()
}

// close marks the provider closed, waits for in-flight operations, runs
// release and destroys the key. It reports whether this call closed it.
func (p *providerCore) close(release func()) bool {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.closed {
		return false
	}
	p.closed = true
	if release != nil {
		release()
	}
	p.key.Destroy()
	p.setState(StateClosed)
	p.logger.Debug("provider closed")
	return true
}
