package fileservice

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// ProcessBatch reads each name and passes its content through t. Items are
// independent: a failure is recorded in that item's result and the rest of
// the batch continues. Results are returned in input order.
//
// Up to the store's batch concurrency items run at once. When ctx is
// canceled, items that have not started yet report ctx.Err(); items already
// completed keep their effects on the cache.
func (s *ContentStore) ProcessBatch(ctx context.Context, names []string, t Transformer) []BatchResult {
	results := make([]BatchResult, len(names))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)

	for i, name := range names {
		results[i].Name = name
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}

		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			content, err := s.Read(ctx, name)
			if err != nil {
				results[i].Err = err
				return nil
			}
			if t != nil {
				content = t.Apply(content)
			}
			results[i].Content = content
			return nil
		})
	}

	// Item errors live in results; the group itself never fails.
	_ = g.Wait()
	return results
}
