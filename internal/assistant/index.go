package assistant

import (
	"context"

	pgvector "github.com/pgvector/pgvector-go"
)

// QueryFilter restricts a similarity query to one source type. A nil
// filter matches every entry in the namespace.
type QueryFilter struct {
	SourceType SourceType
}

// VectorIndex is a namespace-partitioned nearest-neighbor store keyed by
// opaque string IDs. Upsert overwrites by ID; Query returns up to topK
// matches in non-increasing similarity order.
type VectorIndex interface {
	Upsert(ctx context.Context, entries []IndexEntry) error
	Query(ctx context.Context, vector pgvector.Vector, topK int, filter *QueryFilter) ([]Match, error)
}
