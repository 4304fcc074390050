package confcrypt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hengadev/confcrypt/internal/pool"
)

// PoolConfig bounds the pooled strategy. The zero value never exhausts:
// ciphers are created on demand and idle ones may be reclaimed by the
// garbage collector.
type PoolConfig struct {
	// MaxTotal caps the number of ciphers in use at once. Zero means no cap.
	MaxTotal int
	// BlockWhenExhausted waits for a free cipher instead of failing with
	// ErrPoolExhausted.
	BlockWhenExhausted bool
	// MaxWait bounds that wait. Zero waits indefinitely.
	MaxWait time.Duration
}

// PoolStats is a snapshot of the cipher pool counters.
type PoolStats = pool.Stats

// PooledProvider pairs one secret key with a pool of ciphers created on
// demand by the engine. Each operation borrows a cipher exclusively and
// returns it afterwards, so throughput is bounded by the number of live
// ciphers rather than a single lock.
type PooledProvider struct {
	*providerCore
	pool *pool.Pool[Cipher]
}

var _ Provider = (*PooledProvider)(nil)

// cipherFactory creates ciphers through the engine. Passivation keeps the
// keyed state so a reused cipher skips the key schedule.
type cipherFactory struct {
	engine *Engine
}

func (f cipherFactory) Create() (*Cipher, error) {
	return f.engine.CreateCipher()
}

func (f cipherFactory) Passivate(c *Cipher) error {
	return c.Passivate()
}

// NewPooledProvider takes ownership of key; closing the provider destroys it.
func NewPooledProvider(engine *Engine, key *SecretKey, cfg PoolConfig, opts ...ProviderOption) (*PooledProvider, error) {
	if engine == nil {
		return nil, newConfigurationError(fmt.Errorf("engine is required"))
	}
	return newPooledProvider(engine, key, cfg, cipherFactory{engine: engine}, opts...)
}

func newPooledProvider(engine *Engine, key *SecretKey, cfg PoolConfig, factory pool.Factory[Cipher], opts ...ProviderOption) (*PooledProvider, error) {
	o := applyProviderOptions(opts)
	core, err := newProviderCore(StrategyPooled, engine, key, o)
	if err != nil {
		return nil, err
	}
	core.setState(StateKeyed)

	p := &PooledProvider{providerCore: core}
	p.pool, err = pool.New[Cipher](&observedFactory{Factory: factory, provider: p}, pool.Config{
		MaxTotal:           cfg.MaxTotal,
		BlockWhenExhausted: cfg.BlockWhenExhausted,
		MaxWait:            cfg.MaxWait,
	})
	if err != nil {
		return nil, newConfigurationError(err)
	}
	core.setState(StateReady)

	core.logger.Debug("provider created",
		slog.String("transform", engine.Transform()),
		slog.Int("pool_max_total", cfg.MaxTotal),
	)
	return p, nil
}

func (p *PooledProvider) Encrypt(value string) (string, error) {
	return p.run(OperationEncrypt, func() (string, error) {
		return p.withCipher(func(c *Cipher) (string, error) {
			return p.engine.Encrypt(value, p.key, c)
		})
	})
}

func (p *PooledProvider) Decrypt(value string) (string, error) {
	return p.run(OperationDecrypt, func() (string, error) {
		return p.withCipher(func(c *Cipher) (string, error) {
			return p.engine.Decrypt(value, p.key, c)
		})
	})
}

// withCipher borrows a cipher, runs fn and always returns the cipher. A
// return failure is attached to fn's error when fn failed, and replaces the
// result otherwise.
func (p *PooledProvider) withCipher(fn func(c *Cipher) (string, error)) (out string, err error) {
	c, err := p.pool.Borrow(context.Background())
	if err != nil {
		return "", p.borrowError(err)
	}

	defer func() {
		retErr := p.pool.Return(c)
		if retErr == nil {
			return
		}
		p.poolEvent("return_failed")
		retErr = newProviderError("return cipher to pool", retErr)
		if err != nil {
			err = withSuppressed(err, retErr)
		} else {
			out, err = "", retErr
		}
	}()

	return fn(c)
}

func (p *PooledProvider) borrowError(err error) error {
	switch {
	case errors.Is(err, pool.ErrExhausted):
		p.poolEvent("exhausted")
		return fmt.Errorf("%w: %w", ErrPoolExhausted, err)
	case errors.Is(err, pool.ErrClosed):
		return ErrProviderClosed
	default:
		p.poolEvent("create_failed")
		return newProviderError("borrow cipher", err)
	}
}

func (p *PooledProvider) poolEvent(event string) {
	stats := p.pool.Stats()
	meta := p.metadata()
	meta["active"] = stats.Active
	meta["idle"] = stats.Idle
	p.hook.OnPoolEvent(event, meta)
}

// Stats returns the current cipher pool counters.
func (p *PooledProvider) Stats() PoolStats {
	return p.pool.Stats()
}

func (p *PooledProvider) Close() error {
	p.close(p.pool.Close)
	return nil
}

// observedFactory reports cipher creation as a pool event.
type observedFactory struct {
	pool.Factory[Cipher]
	provider *PooledProvider
}

func (f *observedFactory) Create() (*Cipher, error) {
	c, err := f.Factory.Create()
	if err == nil && c != nil {
		f.provider.hook.OnPoolEvent("created", f.provider.metadata())
	}
	return c, err
}
