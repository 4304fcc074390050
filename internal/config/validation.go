package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hengadev/confcrypt/internal/crypto"
	"github.com/hengadev/errsx"
)

// Provider strategies.
const (
	StrategyDefault = "default"
	StrategyPooled  = "pooled"
)

// Argon2Params holds the Argon2id cost parameters.
type Argon2Params struct {
	Memory      uint32 `yaml:"memory"` // KiB
	Iterations  uint32 `yaml:"iterations"`
	Parallelism uint8  `yaml:"parallelism"`
}

// Validate checks if the Argon2 parameters are within acceptable ranges.
func (a *Argon2Params) Validate() error {
	errs := errsx.Map{}

	// Memory should be at least 8MiB (8192 KiB)
	if a.Memory < 8192 {
		errs.Set("memory", fmt.Errorf("memory must be at least 8192 KiB, got %d", a.Memory))
	}

	if a.Iterations < 1 {
		errs.Set("iterations", fmt.Errorf("iterations must be at least 1, got %d", a.Iterations))
	}

	if a.Parallelism < 1 {
		errs.Set("parallelism", fmt.Errorf("parallelism must be at least 1, got %d", a.Parallelism))
	}

	return errs.AsError()
}

// Params is the flat set of knobs validated together.
type Params struct {
	KDFAlgorithm string
	KeyAlgorithm string
	Transform    string
	Iterations   int
	KeyLength    int // bits
	IVLength     int // bytes
	TagLength    int // bytes
	SaltLength   int // bytes
	Salt         []byte
	Argon2       *Argon2Params

	Strategy     string
	PoolMaxTotal int
	PoolMaxWait  time.Duration
}

// Validate checks numeric ranges. With strict set it also resolves algorithm
// names and checks that they fit together (key length against key
// algorithm, IV and tag lengths against the transform).
//
// The returned error is an errsx.Map keyed by field name.
func Validate(p Params, strict bool) error {
	errs := errsx.Map{}

	if p.Iterations < 1 {
		errs.Set("iterations", fmt.Errorf("iterations must be at least 1, got %d", p.Iterations))
	}
	if p.KeyLength <= 0 || p.KeyLength%8 != 0 {
		errs.Set("keyLength", fmt.Errorf("key length must be a positive multiple of 8 bits, got %d", p.KeyLength))
	}
	if p.IVLength <= 0 {
		errs.Set("ivLength", fmt.Errorf("iv length must be positive, got %d", p.IVLength))
	}
	if p.TagLength <= 0 {
		errs.Set("tagLength", fmt.Errorf("tag length must be positive, got %d", p.TagLength))
	}
	if len(p.Salt) == 0 && p.SaltLength <= 0 {
		errs.Set("saltLength", fmt.Errorf("salt length must be positive when no salt is given, got %d", p.SaltLength))
	}
	if p.PoolMaxTotal < 0 {
		errs.Set("poolMaxTotal", fmt.Errorf("pool max total must not be negative, got %d", p.PoolMaxTotal))
	}
	if p.PoolMaxWait < 0 {
		errs.Set("poolMaxWait", fmt.Errorf("pool max wait must not be negative, got %s", p.PoolMaxWait))
	}
	if p.Strategy != "" && p.Strategy != StrategyDefault && p.Strategy != StrategyPooled {
		errs.Set("strategy", fmt.Errorf("strategy must be %q or %q, got %q", StrategyDefault, StrategyPooled, p.Strategy))
	}

	if strict {
		validateAlgorithms(p, &errs)
	}

	return errs.AsError()
}

func validateAlgorithms(p Params, errs *errsx.Map) {
	if !crypto.SupportedKDF(p.KDFAlgorithm) {
		errs.Set("kdfAlgorithm", fmt.Errorf("unsupported key derivation algorithm %q", p.KDFAlgorithm))
	} else if strings.EqualFold(strings.TrimSpace(p.KDFAlgorithm), crypto.KDFArgon2id) {
		if p.Argon2 == nil {
			errs.Set("argon2", "argon2 parameters are required for Argon2id")
		} else if err := p.Argon2.Validate(); err != nil {
			errs.Set("argon2", err)
		}
	}

	keyAlgorithm, err := crypto.CanonicalKeyAlgorithm(p.KeyAlgorithm)
	if err != nil {
		errs.Set("keyAlgorithm", err)
	} else if p.KeyLength > 0 && !crypto.ValidKeySize(keyAlgorithm, p.KeyLength/8) {
		errs.Set("keyLength", fmt.Errorf("%d-bit keys are not valid for %s", p.KeyLength, keyAlgorithm))
	}

	transform, err := crypto.LookupTransform(p.Transform)
	if err != nil {
		errs.Set("transform", err)
		return
	}
	if keyAlgorithm != "" && transform.KeyAlgorithm != keyAlgorithm {
		errs.Set("transform", fmt.Errorf("%s requires %s keys, got %s", transform.Name, transform.KeyAlgorithm, keyAlgorithm))
	}
	if p.IVLength > 0 && p.TagLength > 0 {
		if err := transform.CheckParameters(p.IVLength, p.TagLength); err != nil {
			errs.Set("tagLength", err)
		}
	}
}
