// Package batch runs many independent calls with a bounded number in flight.
package batch

import (
	"context"
	"sync"
)

// DefaultLimit is the number of calls allowed in flight at once.
const DefaultLimit = 10

// Result is the outcome of one input. Results are returned in input order.
type Result[R any] struct {
	Value R
	Err   error
}

// Run calls fn for every input using at most limit workers and waits for all of
// them to settle. A failed call does not stop the others; callers decide what a
// failure means for the batch as a whole.
func Run[T, R any](ctx context.Context, inputs []T, limit int, fn func(ctx context.Context, in T) (R, error)) []Result[R] {
	results := make([]Result[R], len(inputs))
	if len(inputs) == 0 {
		return results
	}

	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > len(inputs) {
		limit = len(inputs)
	}

	queue := make(chan int, len(inputs))
	for i := range inputs {
		queue <- i
	}
	close(queue)

	var wg sync.WaitGroup
	for w := 0; w < limit; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range queue {
				if err := ctx.Err(); err != nil {
					results[i].Err = err
					continue
				}
				value, err := fn(ctx, inputs[i])
				results[i] = Result[R]{Value: value, Err: err}
			}
		}()
	}

	wg.Wait()
	return results
}

// FirstError returns the error of the lowest-indexed failed result.
func FirstError[R any](results []Result[R]) error {
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
	}
	return nil
}

// Values returns the values of results in input order.
func Values[R any](results []Result[R]) []R {
	values := make([]R, len(results))
	for i, r := range results {
		values[i] = r.Value
	}
	return values
}

// Chunk splits s into consecutive groups of at most size elements.
func Chunk[T any](s []T, size int) [][]T {
	if size <= 0 {
		size = len(s)
	}

	var chunks [][]T
	for start := 0; start < len(s); start += size {
		end := start + size
		if end > len(s) {
			end = len(s)
		}
		chunks = append(chunks, s[start:end])
	}
	return chunks
}
