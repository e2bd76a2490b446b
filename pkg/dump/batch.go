package dump

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/seeddump/pkg/core"
)

// fetchFunc fetches the page following cursor and returns the next cursor.
type fetchFunc func(ctx context.Context, after any, limit int) (core.Batch, any, error)

// Batches is a single-pass iterator over a collection's batches.
//
//	it, err := Enumerate(coll, 1000, false)
//	for it.Next(ctx) {
//		b := it.Batch()
//	}
//	err = it.Err()
type Batches struct {
	size  int
	fetch fetchFunc

	cursor  any
	pending *core.Batch
	started bool
	done    bool

	current core.Batch
	err     error
}

// Enumerate returns the batches of c. Store-backed collections are paged
// from the store; in-memory collections are sliced into windows. The
// identifiers-only projection is available for store-backed collections.
func Enumerate(c core.Collection, size int, idsOnly bool) (*Batches, error) {
	if size <= 0 {
		size = core.DefaultBatchSize
	}

	if b, ok := c.(core.Batchable); ok {
		fetch := func(ctx context.Context, after any, limit int) (core.Batch, any, error) {
			recs, next, err := b.FetchPage(ctx, after, limit)
			return core.Batch{Records: recs}, next, err
		}
		if idsOnly {
			fetch = func(ctx context.Context, after any, limit int) (core.Batch, any, error) {
				ids, next, err := b.FetchIDs(ctx, after, limit)
				if ids == nil {
					ids = []any{}
				}
				return core.Batch{IDs: ids}, next, err
			}
		}
		return &Batches{size: size, fetch: fetch}, nil
	}

	if idsOnly {
		return nil, fmt.Errorf("%s: identifiers-only enumeration requires a store-backed collection", c.Model())
	}

	if l, ok := c.(core.Lister); ok {
		records := l.Records()
		fetch := func(_ context.Context, after any, limit int) (core.Batch, any, error) {
			start, _ := after.(int)
			if start >= len(records) {
				return core.Batch{}, start, nil
			}
			end := min(start+limit, len(records))
			return core.Batch{Records: records[start:end]}, end, nil
		}
		return &Batches{size: size, fetch: fetch}, nil
	}

	return nil, fmt.Errorf("%s: collection %T is neither batchable nor a list", c.Model(), c)
}

// Next advances to the next batch. It returns false when the enumeration is
// exhausted or an error occurred.
func (it *Batches) Next(ctx context.Context) bool {
	if it.done || it.err != nil {
		return false
	}

	if !it.started {
		it.started = true
		first, err := it.load(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.pending = first
	}

	if it.pending == nil {
		it.done = true
		return false
	}

	cur := *it.pending
	it.pending = nil

	// A short page ends the collection; a full page needs one page of
	// lookahead to know whether it is the last.
	if cur.Len() >= it.size {
		next, err := it.load(ctx)
		if err != nil {
			it.err = err
			return false
		}
		it.pending = next
	}
	cur.Last = it.pending == nil
	it.current = cur
	return true
}

// load fetches one page. It returns nil at the end of the collection.
func (it *Batches) load(ctx context.Context) (*core.Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, next, err := it.fetch(ctx, it.cursor, it.size)
	if err != nil {
		return nil, err
	}
	if b.Len() == 0 {
		return nil, nil
	}
	it.cursor = next
	return &b, nil
}

// Batch returns the current batch.
func (it *Batches) Batch() core.Batch {
	return it.current
}

// Err returns the first error encountered.
func (it *Batches) Err() error {
	return it.err
}
