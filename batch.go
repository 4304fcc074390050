package confcrypt

import (
	"context"

	"github.com/hengadev/confcrypt/internal/performance"
)

// BatchOptions configures EncryptAll and DecryptAll.
type BatchOptions = performance.BatchOptions

// BatchResult holds index-aligned outputs and per-item errors.
type BatchResult = performance.BatchResult

// BatchError is the failure of one item.
type BatchError = performance.BatchError

// EncryptAll encrypts values concurrently with provider. Items fail
// independently; see BatchResult.Errors. With the default strategy the
// provider serializes the work, so the pooled strategy is the one that
// gains from batching.
func EncryptAll(ctx context.Context, provider Provider, values []string, opts *BatchOptions) (*BatchResult, error) {
	return performance.Run(ctx, provider.Encrypt, values, opts)
}

// DecryptAll decrypts values concurrently with provider.
func DecryptAll(ctx context.Context, provider Provider, values []string, opts *BatchOptions) (*BatchResult, error) {
	return performance.Run(ctx, provider.Decrypt, values, opts)
}
