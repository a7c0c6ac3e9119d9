package translate

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// completeFunc sends one prompt to a model and returns its text reply.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// batchTranslator splits items into batches of BatchSize, one request per
// batch, and checks each reply has one result per item. Providers supply
// only the request.
type batchTranslator struct {
	provider string
	complete completeFunc
	options  Options
}

func (t *batchTranslator) batchSize() int {
	if t.options.BatchSize > 0 {
		return t.options.BatchSize
	}
	return DefaultBatchSize
}

func (t *batchTranslator) batches(items []Item) [][]Item {
	size := t.batchSize()
	var batches [][]Item
	for i := 0; i < len(items); i += size {
		end := i + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}
	return batches
}

func (t *batchTranslator) Translate(ctx context.Context, items []Item) ([]Result, error) {
	return t.TranslateWithConcurrency(ctx, items, 1)
}

// TranslateWithConcurrency runs up to concurrency batches at once. The
// first failing batch cancels the rest.
func (t *batchTranslator) TranslateWithConcurrency(
	ctx context.Context,
	items []Item,
	concurrency int,
) ([]Result, error) {
	if len(items) == 0 {
		return []Result{}, nil
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	batches := t.batches(items)
	if len(batches) == 1 {
		return t.translateBatch(ctx, batches[0])
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type batchResult struct {
		index   int
		results []Result
		err     error
	}

	work := make(chan int)
	done := make(chan batchResult, len(batches))

	var wg sync.WaitGroup
	for i := 0; i < concurrency && i < len(batches); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range work {
				if ctx.Err() != nil {
					return
				}
				results, err := t.translateBatch(ctx, batches[idx])
				if err != nil {
					cancel()
				}
				done <- batchResult{index: idx, results: results, err: err}
			}
		}()
	}

	go func() {
		defer close(work)
		for i := range batches {
			select {
			case <-ctx.Done():
				return
			case work <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(done)
	}()

	var (
		all      []Result
		firstErr error
	)
	for r := range done {
		if r.err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("batch %d failed: %w", r.index, r.err)
			}
			continue
		}
		all = append(all, r.results...)
	}
	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil && len(all) != len(items) {
		return nil, err
	}

	sort.Slice(all, func(i, j int) bool {
		return all[i].Index < all[j].Index
	})
	return all, nil
}

func (t *batchTranslator) translateBatch(ctx context.Context, items []Item) ([]Result, error) {
	text, err := t.complete(ctx, BuildPrompt(t.options, items))
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if text == "" {
		return nil, fmt.Errorf("no text in %s response", t.provider)
	}

	text = cleanJSONResponse(text)
	results, err := extractResults(text)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			truncateString(text, 200),
		)
	}
	if len(results) != len(items) {
		return nil, fmt.Errorf("expected %d results, got %d", len(items), len(results))
	}
	return results, nil
}

func (t *batchTranslator) Close() error {
	return nil
}
