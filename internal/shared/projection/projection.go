package projection

import "time"

// Metadata captures persistence bookkeeping shared by projections. Version is
// the optimistic concurrency token the store expects back on the next write.
type Metadata struct {
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
}

// Projection represents an aggregate view plus persistence metadata.
type Projection[T any] struct {
	Entity   T
	Metadata Metadata
}

// Page is a slice of projections plus the total number of matches.
type Page[T any] struct {
	Items []*Projection[T]
	Total int
	Page  int
	Limit int
}
