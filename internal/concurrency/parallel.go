package concurrency

import (
	"context"
	"sync"
)

// ParallelOptions configures parallel processing.
type ParallelOptions struct {
	// MaxWorkers is the upper bound on concurrent workers.
	MaxWorkers int
}

func DefaultOptions() ParallelOptions {
	return ParallelOptions{
		MaxWorkers: 5,
	}
}

// ProcessParallel runs itemFunc over items on a fixed-size worker pool.
// Tasks are independent; results land in input order regardless of which
// worker finished first. Workers may block on I/O or backoff sleeps without
// holding each other up.
func ProcessParallel[T any, R any](
	ctx context.Context,
	items []T,
	opts ParallelOptions,
	itemFunc func(ctx context.Context, index int, item T) (R, error),
) ([]R, []error) {
	if len(items) == 0 {
		return []R{}, nil
	}

	maxWorkers := opts.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = DefaultOptions().MaxWorkers
	}
	if maxWorkers > len(items) {
		maxWorkers = len(items)
	}

	jobs := make(chan int, len(items))
	results := make(chan struct {
		index  int
		result R
		err    error
	}, len(items))

	var wg sync.WaitGroup
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for jobIndex := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
					result, err := itemFunc(ctx, jobIndex, items[jobIndex])
					results <- struct {
						index  int
						result R
						err    error
					}{jobIndex, result, err}
				}
			}
		}()
	}

	for i := range items {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	resultList := make([]R, len(items))
	var errors []error

	for i := 0; i < len(items); i++ {
		res := <-results
		if res.err != nil {
			errors = append(errors, res.err)
		}
		resultList[res.index] = res.result
	}

	return resultList, errors
}
