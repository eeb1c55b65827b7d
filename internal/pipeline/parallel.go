package pipeline

import (
	"context"
	"sync"

	"github.com/enesozyaramiss/Genetic-app-en/internal/match"
)

// WorkItem holds a matched row ready for augmentation.
type WorkItem struct {
	Seq    int
	Record *match.Record
}

// WorkResult holds the augmented copy of a row.
type WorkResult struct {
	Seq    int
	Record *match.Record
	Err    error
}

// parallelAugment augments work items using a pool of workers.
// Results are sent in arrival order; use OrderedCollect to consume them in
// sequence-number order.
func (a *Augmenter) parallelAugment(ctx context.Context, items <-chan WorkItem, workers int) <-chan WorkResult {
	if workers <= 0 {
		workers = 1
	}

	results := make(chan WorkResult, 2*workers)

	var wg sync.WaitGroup
	wg.Add(workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			for item := range items {
				if err := ctx.Err(); err != nil {
					results <- WorkResult{Seq: item.Seq, Err: err}
					continue
				}
				rec, err := a.augment(ctx, item.Record)
				results <- WorkResult{Seq: item.Seq, Record: rec, Err: err}
			}
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}

// OrderedCollect calls fn for each result in sequence-number order.
// It buffers out-of-order results in a pending map and emits them
// as soon as the next expected sequence number is available.
// Blocks until the results channel is closed.
func OrderedCollect(results <-chan WorkResult, fn func(WorkResult) error) error {
	pending := make(map[int]WorkResult)
	nextSeq := 0

	for r := range results {
		pending[r.Seq] = r

		for {
			rr, ok := pending[nextSeq]
			if !ok {
				break
			}
			delete(pending, nextSeq)
			nextSeq++
			if err := fn(rr); err != nil {
				// Drain remaining results to unblock workers.
				for range results {
				}
				return err
			}
		}
	}

	return nil
}
