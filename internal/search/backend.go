package search

import (
	"context"

	"github.com/google/uuid"

	"github.com/ACMCMC/argilla/internal/domain"
)

// Backend is the narrow capability interface each document-search backend
// implements. The engine keeps all document modeling and query building
// backend-agnostic and delegates only raw request mechanics here.
type Backend interface {
	// Name identifies the backend for logs and metrics.
	Name() string

	Ping(ctx context.Context) error

	CreateIndex(ctx context.Context, index string, settings, mappings map[string]any) error
	DeleteIndex(ctx context.Context, index string) error
	IndexExists(ctx context.Context, index string) (bool, error)

	// PutMapping adds mapping properties to an existing index. Existing
	// properties are never removed or narrowed.
	PutMapping(ctx context.Context, index string, properties map[string]any) error
	// GetMapping returns the live mapping properties tree of the index.
	GetMapping(ctx context.Context, index string) (map[string]any, error)

	// UpdateDocument applies a partial update body ("doc" merge or "script")
	// to a single document.
	UpdateDocument(ctx context.Context, index, id string, body map[string]any) error
	Bulk(ctx context.Context, actions []BulkAction) error
	Refresh(ctx context.Context, index string) error

	Search(ctx context.Context, index string, q *SearchQuery) (*SearchResult, error)
	SimilaritySearch(ctx context.Context, index string, q *SimilarityQuery) (*SearchResult, error)

	// MappingForVectorSettings returns the backend-specific mapping fragment
	// for one vector settings definition.
	MappingForVectorSettings(settings domain.VectorSettings) map[string]any
}

// BulkOp selects the kind of a bulk action.
type BulkOp string

const (
	// BulkIndex replaces the whole document.
	BulkIndex BulkOp = "index"
	// BulkUpdate merges a partial document.
	BulkUpdate BulkOp = "update"
	// BulkDelete removes the document.
	BulkDelete BulkOp = "delete"
)

// BulkAction is one item of a batched bulk request, keyed by document ID.
type BulkAction struct {
	Op    BulkOp
	Index string
	ID    string
	// Doc is the full document for index actions and the partial document
	// for update actions. Unused for deletes.
	Doc map[string]any
}

// SearchQuery is a raw search request: compiled query DSL, optional
// aggregations, pagination and a serialized sort.
type SearchQuery struct {
	Query        map[string]any
	Aggregations map[string]any
	From         int
	Size         int
	// Sort is a "field:direction" list, empty for relevance order.
	Sort string
}

// SimilarityQuery is a raw similarity-search request against one vector field.
type SimilarityQuery struct {
	Settings domain.VectorSettings
	Value    []float32
	K        int
	// ExcludedID drops the reference record from the results.
	ExcludedID *uuid.UUID
	// Filters are compiled query fragments further constraining the matches.
	Filters []map[string]any
}

// SearchResult is the wire-shaped response both backends produce.
type SearchResult struct {
	Hits         HitsSection            `json:"hits"`
	Aggregations map[string]Aggregation `json:"aggregations"`
}

// HitsSection carries the matched documents and the total count.
type HitsSection struct {
	Total TotalSection `json:"total"`
	Hits  []Hit        `json:"hits"`
}

// TotalSection is the total hit count of a search response.
type TotalSection struct {
	Value int64 `json:"value"`
}

// Hit is one matched document.
type Hit struct {
	ID    string   `json:"_id"`
	Score *float64 `json:"_score"`
}

// Aggregation covers the aggregation result shapes the engine consumes:
// value_count (Value), stats (Min/Max) and terms (Buckets).
type Aggregation struct {
	Value   float64  `json:"value"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one terms-aggregation bucket.
type Bucket struct {
	Key      any   `json:"key"`
	DocCount int64 `json:"doc_count"`
}
