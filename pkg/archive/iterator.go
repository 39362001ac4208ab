package archive

import "context"

// iterState names the iterator's position in its page-fetch cycle.
// Explicit states make termination and re-entry auditable; there is no
// hidden flag combination that both buffers documents and fetches.
type iterState int

const (
	// stateNeedFetch: the buffer is empty and more pages are believed to
	// exist; the next page must be fetched before anything can be yielded.
	stateNeedFetch iterState = iota

	// stateBuffered: at least one not-yet-yielded document is buffered.
	stateBuffered

	// stateExhausted: terminal; every matching document has been yielded
	// (or a fetch error stopped the traversal).
	stateExhausted
)

// Iterator walks a paged search result set lazily, holding at most one
// page of documents in memory. A traversal is single-pass and strictly
// sequential; Reset rewinds the iterator to page one for a fresh pass.
//
// Usage follows the bufio.Scanner shape:
//
//	for it.Next(ctx) {
//		doc := it.Doc()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator struct {
	client *Client
	query  Query
	rows   int

	state iterState
	page  int
	more  bool
	buf   []Document
	doc   Document
	err   error

	yielded int
	fetches int
}

// Iterate returns a lazy iterator over every document matching the query,
// fetched rows documents per page. A rows value of zero or less yields an
// immediately exhausted iterator.
func (c *Client) Iterate(q Query, rows int) *Iterator {
	it := &Iterator{client: c, query: q, rows: rows}
	it.Reset()
	return it
}

// Collections iterates the sub-collections of a containing collection.
func (c *Client) Collections(collection string, rows int) *Iterator {
	return c.Iterate(CollectionQuery(collection, "collection"), rows)
}

// Ebooks iterates the digitized texts of a containing collection.
func (c *Client) Ebooks(collection string, rows int) *Iterator {
	return c.Iterate(CollectionQuery(collection, "texts"), rows)
}

// Next advances the iterator, fetching the next page when the buffer is
// drained. It reports false when the sequence is exhausted or a fetch
// failed; Err distinguishes the two.
func (it *Iterator) Next(ctx context.Context) bool {
	for {
		switch it.state {
		case stateExhausted:
			return false

		case stateBuffered:
			// FIFO pop preserves server ranking order within and across pages.
			it.doc = it.buf[0]
			it.buf = it.buf[1:]
			it.yielded++
			if len(it.buf) == 0 {
				if it.more {
					it.state = stateNeedFetch
				} else {
					it.exhaust()
				}
			}
			return true

		case stateNeedFetch:
			it.page++
			resp, err := it.client.Search(ctx, it.query, it.rows, it.page)
			if err != nil {
				it.err = err
				it.state = stateExhausted
				return false
			}
			it.fetches++
			it.buf = resp.Docs
			it.more = it.page*it.rows < resp.NumFound
			if len(it.buf) == 0 {
				// Zero matches, or the server under-delivered the last page.
				it.exhaust()
				return false
			}
			it.state = stateBuffered
		}
	}
}

// Doc returns the document produced by the most recent successful Next.
func (it *Iterator) Doc() Document {
	return it.doc
}

// Err returns the fetch error that stopped the traversal, if any.
func (it *Iterator) Err() error {
	return it.err
}

// Reset rewinds the iterator to a fresh traversal starting at page one.
func (it *Iterator) Reset() {
	it.page = 0
	it.more = true
	it.buf = nil
	it.doc = nil
	it.err = nil
	it.yielded = 0
	it.fetches = 0
	if it.rows <= 0 {
		it.state = stateExhausted
		return
	}
	it.state = stateNeedFetch
}

// Collect drains the remainder of the traversal into memory, for callers
// that need a total count or multiple passes over the results.
func (it *Iterator) Collect(ctx context.Context) ([]Document, error) {
	docs := []Document{}
	for it.Next(ctx) {
		docs = append(docs, it.Doc())
	}
	return docs, it.Err()
}

func (it *Iterator) exhaust() {
	it.state = stateExhausted
	it.client.logger.Info().
		Str("query", it.query.Expression()).
		Int("documents", it.yielded).
		Int("pages", it.fetches).
		Msg("Iteration complete")
}
