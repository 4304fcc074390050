package confcrypt

import (
	"log/slog"
	"sync"
)

// DefaultProvider pairs one secret key with one lazily created cipher shared
// by all calls. Every operation holds the cipher exclusively, so operations
// are serialized. Suitable for low request rates.
type DefaultProvider struct {
	*providerCore

	mu     sync.Mutex
	cipher *Cipher
}

var _ Provider = (*DefaultProvider)(nil)

// NewDefaultProvider takes ownership of key; closing the provider destroys it.
func NewDefaultProvider(engine *Engine, key *SecretKey, opts ...ProviderOption) (*DefaultProvider, error) {
	o := applyProviderOptions(opts)
	core, err := newProviderCore(StrategyDefault, engine, key, o)
	if err != nil {
		return nil, err
	}
	core.setState(StateKeyed)
	core.logger.Debug("provider created", slog.String("transform", engine.Transform()))
	return &DefaultProvider{providerCore: core}, nil
}

func (p *DefaultProvider) Encrypt(value string) (string, error) {
	return p.run(OperationEncrypt, func() (string, error) {
		return p.withCipher(func(c *Cipher) (string, error) {
			return p.engine.Encrypt(value, p.key, c)
		})
	})
}

func (p *DefaultProvider) Decrypt(value string) (string, error) {
	return p.run(OperationDecrypt, func() (string, error) {
		return p.withCipher(func(c *Cipher) (string, error) {
			return p.engine.Decrypt(value, p.key, c)
		})
	})
}

func (p *DefaultProvider) withCipher(fn func(c *Cipher) (string, error)) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cipher == nil {
		c, err := p.engine.CreateCipher()
		if err != nil {
			return "", err
		}
		p.cipher = c
		p.setState(StateReady)
	}
	return fn(p.cipher)
}

func (p *DefaultProvider) Close() error {
	p.close(func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.cipher != nil {
			p.cipher.Release()
			_ = p.cipher.Reset()
			p.cipher = nil
		}
	})
	return nil
}
