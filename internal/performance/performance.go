package performance

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Transformer converts one string value, e.g. a provider's Encrypt or
// Decrypt method.
type Transformer func(value string) (string, error)

// BatchOptions configures batch processing behavior
type BatchOptions struct {
	// MaxConcurrency limits the number of concurrent operations (0 = number of CPUs)
	MaxConcurrency int

	// StopOnFirstError cancels the remaining items after the first failure
	StopOnFirstError bool

	// ProgressCallback is called after each item is processed
	ProgressCallback func(processed, total int, err error)
}

// BatchResult contains the results of batch processing. Values is index
// aligned with the input; failed items leave an empty string.
type BatchResult struct {
	Values    []string
	Processed int
	Failed    int
	Skipped   int
	Total     int
	Errors    []BatchError
	Duration  time.Duration
}

// BatchError represents an error that occurred during batch processing
type BatchError struct {
	Index int
	Err   error
}

func (e BatchError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e BatchError) Unwrap() error {
	return e.Err
}

// Run applies fn to every value with bounded concurrency. Items not started
// because of cancellation are counted as skipped. The returned error is the
// context error or, with StopOnFirstError, the first item error.
func Run(ctx context.Context, fn Transformer, values []string, options *BatchOptions) (*BatchResult, error) {
	if fn == nil {
		return nil, fmt.Errorf("batch transformer cannot be nil")
	}

	opts := BatchOptions{MaxConcurrency: runtime.NumCPU()}
	if options != nil {
		if options.MaxConcurrency > 0 {
			opts.MaxConcurrency = options.MaxConcurrency
		}
		opts.StopOnFirstError = options.StopOnFirstError
		opts.ProgressCallback = options.ProgressCallback
	}

	start := time.Now()
	result := &BatchResult{
		Values: make([]string, len(values)),
		Total:  len(values),
	}
	if len(values) == 0 {
		return result, nil
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Use semaphore pattern to limit concurrency
	semaphore := make(chan struct{}, opts.MaxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, value := range values {
		select {
		case semaphore <- struct{}{}:
		case <-batchCtx.Done():
		}
		if batchCtx.Err() != nil {
			result.Skipped = len(values) - i
			break
		}

		wg.Add(1)
		go func(index int, value string) {
			defer wg.Done()
			defer func() { <-semaphore }()

			out, err := fn(value)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, BatchError{Index: index, Err: err})
				if opts.StopOnFirstError {
					cancel()
				}
			} else {
				result.Values[index] = out
				result.Processed++
			}
			if opts.ProgressCallback != nil {
				opts.ProgressCallback(result.Processed+result.Failed, result.Total, err)
			}
		}(i, value)
	}

	wg.Wait()
	result.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		return result, err
	}
	if opts.StopOnFirstError && len(result.Errors) > 0 {
		first := result.Errors[0]
		for _, e := range result.Errors[1:] {
			if e.Index < first.Index {
				first = e
			}
		}
		return result, first
	}
	return result, nil
}
