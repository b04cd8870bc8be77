package engine

import "context"

// Handle is the live pipeline produced by Setup. Callers treat it as opaque:
// it is borrowed for the duration of a query and passed back unchanged.
type Handle interface{}

// Engine is the external hybrid retrieval collaborator. Setup is expensive
// and runs rarely; Query is the per-utterance call. Query results are
// intentionally loose (a string, or a record with answer/sources/sql/rows);
// normalization happens on the caller's side.
type Engine interface {
	Setup(ctx context.Context) (Handle, error)
	Query(ctx context.Context, handle Handle, query string) (interface{}, error)
}
