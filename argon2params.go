package confcrypt

import "github.com/hengadev/confcrypt/internal/config"

// Argon2Params defines the parameters for Argon2id
type Argon2Params = config.Argon2Params

// DefaultArgon2Params returns recommended parameters for Argon2id
func DefaultArgon2Params() *Argon2Params {
	return &Argon2Params{
		Memory:      64 * 1024, // 64MB
		Iterations:  3,
		Parallelism: 2,
	}
}
