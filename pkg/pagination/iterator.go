package pagination

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
)

// ErrStalledCursor is returned when the server points next_page back at
// the page that was just fetched.
var ErrStalledCursor = errors.New("pagination cursor does not advance")

// PageFetcher loads one page of a resource.
type PageFetcher func(ctx context.Context, page int) (*Envelope, error)

// Iterator yields the records of a paginated resource one by one.
// It is not safe for concurrent use and cannot be restarted.
type Iterator struct {
	ctx   context.Context
	fetch PageFetcher

	next    int
	hasNext bool
	page    int
	pages   int

	buf []json.RawMessage
	pos int
	cur json.RawMessage
	err error
}

// NewIterator returns an iterator that starts at startPage (1 when < 1).
// No request is made until Next is called.
func NewIterator(ctx context.Context, startPage int, fetch PageFetcher) *Iterator {
	if startPage < 1 {
		startPage = 1
	}
	return &Iterator{ctx: ctx, fetch: fetch, next: startPage, hasNext: true}
}

// Next advances to the next record, fetching a page if the current one is
// exhausted. It returns false at the end of the stream or on error.
func (it *Iterator) Next() bool {
	for {
		if it.err != nil {
			return false
		}
		if it.pos < len(it.buf) {
			it.cur = it.buf[it.pos]
			it.pos++
			return true
		}
		it.cur = nil
		if !it.hasNext {
			return false
		}
		if err := it.ctx.Err(); err != nil {
			it.err = err
			return false
		}

		env, err := it.fetch(it.ctx, it.next)
		if err != nil {
			it.err = err
			return false
		}
		it.page = it.next
		it.pages++
		it.buf, it.pos = env.Data, 0

		it.next, it.hasNext = env.Next()
		if it.hasNext && it.next == it.page {
			it.err = fmt.Errorf("%w: page %d", ErrStalledCursor, it.page)
			it.buf = nil
			return false
		}
	}
}

// Record returns the current record. It is only valid after Next
// returned true.
func (it *Iterator) Record() json.RawMessage {
	return it.cur
}

// Err returns the first error that stopped iteration.
func (it *Iterator) Err() error {
	return it.err
}

// Page returns the number of the page the current record came from.
func (it *Iterator) Page() int {
	return it.page
}

// Pages returns how many pages have been requested so far.
func (it *Iterator) Pages() int {
	return it.pages
}

// All adapts the iterator to a range-over-func sequence. A failure is
// yielded once with a nil record, then the sequence ends.
func (it *Iterator) All() iter.Seq2[json.RawMessage, error] {
	return func(yield func(json.RawMessage, error) bool) {
		for it.Next() {
			if !yield(it.Record(), nil) {
				return
			}
		}
		if err := it.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect drains it into a slice.
func Collect(ctx context.Context, it *Iterator) ([]json.RawMessage, error) {
	var records []json.RawMessage
	for it.Next() {
		records = append(records, it.Record())
		if err := ctx.Err(); err != nil {
			return records, err
		}
	}
	return records, it.Err()
}
