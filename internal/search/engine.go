// Package search maps datasets and their records onto a document-oriented
// full-text/vector search backend. All document modeling and query building
// is backend-agnostic; raw request mechanics live behind the Backend
// interface with one adapter per backend.
package search

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/search/query"
)

// Aggregation names used by metric computation.
const (
	termsAggregation      = "terms_agg"
	valueCountAggregation = "count_values"
	statsAggregation      = "numeric_stats"
)

// DefaultSearchLimit caps a search when the caller gives no limit.
const DefaultSearchLimit = 100

// Config holds the index-level tuning knobs shared by both backends.
type Config struct {
	// NumberOfShards is the primary shard count of new indexes.
	NumberOfShards int
	// NumberOfReplicas is the replica count of new indexes.
	NumberOfReplicas int
	// MaxTermsSize caps the bucket count of term-frequency aggregations.
	MaxTermsSize int
	// MaxResultWindow bounds offset+limit pagination.
	MaxResultWindow int
	// TotalFieldsLimit bounds the number of mapped fields per index.
	TotalFieldsLimit int
}

// ApplyDefaults fills zero fields with the documented defaults.
func (c *Config) ApplyDefaults() {
	if c.NumberOfShards <= 0 {
		c.NumberOfShards = 1
	}
	if c.NumberOfReplicas < 0 {
		c.NumberOfReplicas = 0
	}
	if c.MaxTermsSize <= 0 {
		c.MaxTermsSize = 1 << 14
	}
	if c.MaxResultWindow <= 0 {
		c.MaxResultWindow = 500000
	}
	if c.TotalFieldsLimit <= 0 {
		c.TotalFieldsLimit = 2000
	}
}

// Engine is the search façade. It holds no mutable cross-call state; all
// state lives in the backend.
type Engine struct {
	backend Backend
	cfg     Config
	logger  *zap.Logger
}

// New creates an engine over a backend. A nil logger disables logging.
func New(backend Backend, cfg Config, logger *zap.Logger) *Engine {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{backend: backend, cfg: cfg, logger: logger}
}

// SearchResponses is a normalized page of search hits.
type SearchResponses struct {
	Items []SearchResponseItem
	Total int64
}

// SearchResponseItem is one hit: a record identity and its score.
type SearchResponseItem struct {
	RecordID uuid.UUID
	Score    *float64
}

// MetadataMetrics is the result of metric computation for one metadata
// property: TermsMetrics for terms properties, NumericMetrics for numeric
// ones.
type MetadataMetrics interface {
	isMetadataMetrics()
}

// TermsMetrics carries the distinct-value total and, when nonzero, the full
// term-frequency breakdown.
type TermsMetrics struct {
	Total  int64
	Values []TermCount
}

func (TermsMetrics) isMetadataMetrics() {}

// TermCount is the document count of one term.
type TermCount struct {
	Term  string
	Count int64
}

// NumericMetrics carries the observed bounds of a numeric property. The
// bounds are nil when the index holds no values.
type NumericMetrics struct {
	Min *float64
	Max *float64
}

func (NumericMetrics) isMetadataMetrics() {}

// Ping reports whether the underlying backend is reachable.
func (e *Engine) Ping(ctx context.Context) error {
	return e.backend.Ping(ctx)
}

// CreateIndex builds the settings and mapping for a dataset and creates its
// index. Idempotency is the backend's concern.
func (e *Engine) CreateIndex(ctx context.Context, dataset *domain.Dataset) error {
	mappings, err := indexMappings(dataset, e.backend)
	if err != nil {
		return err
	}

	index := IndexName(dataset.ID)
	e.logger.Debug("creating index",
		zap.String("index", index),
		zap.String("backend", e.backend.Name()),
	)
	return e.backend.CreateIndex(ctx, index, e.indexSettings(), mappings)
}

// DeleteIndex removes the dataset's index.
func (e *Engine) DeleteIndex(ctx context.Context, dataset *domain.Dataset) error {
	return e.backend.DeleteIndex(ctx, IndexName(dataset.ID))
}

// Refresh makes indexed documents visible to search.
func (e *Engine) Refresh(ctx context.Context, dataset *domain.Dataset) error {
	return e.backend.Refresh(ctx, IndexName(dataset.ID))
}

// ConfigureMetadataProperty extends the index mapping with one metadata
// property. Mappings are only ever added, never removed or narrowed.
func (e *Engine) ConfigureMetadataProperty(
	ctx context.Context, dataset *domain.Dataset, property domain.MetadataProperty,
) error {
	fragment, err := mappingForMetadataProperty(property)
	if err != nil {
		return err
	}
	return e.backend.PutMapping(ctx, IndexName(dataset.ID), fragment)
}

// ConfigureIndexVectors extends the index mapping with one vector settings
// definition. The mapping fragment is backend-specific.
func (e *Engine) ConfigureIndexVectors(
	ctx context.Context, dataset *domain.Dataset, settings domain.VectorSettings,
) error {
	fragment := e.backend.MappingForVectorSettings(settings)
	return e.backend.PutMapping(ctx, IndexName(dataset.ID), fragment)
}

// IndexRecords bulk-upserts records, replacing the whole document keyed by
// record identity.
func (e *Engine) IndexRecords(ctx context.Context, dataset *domain.Dataset, records []*domain.Record) error {
	index := IndexName(dataset.ID)

	actions := make([]BulkAction, 0, len(records))
	for _, record := range records {
		actions = append(actions, BulkAction{
			Op:    BulkIndex,
			Index: index,
			ID:    record.ID.String(),
			Doc:   recordToDocument(record, dataset),
		})
	}

	return e.backend.Bulk(ctx, actions)
}

// DeleteRecords bulk-deletes records keyed by record identity.
func (e *Engine) DeleteRecords(ctx context.Context, dataset *domain.Dataset, records []*domain.Record) error {
	index := IndexName(dataset.ID)

	actions := make([]BulkAction, 0, len(records))
	for _, record := range records {
		actions = append(actions, BulkAction{Op: BulkDelete, Index: index, ID: record.ID.String()})
	}

	return e.backend.Bulk(ctx, actions)
}

// PartialRecordUpdate merges miscellaneous top-level fields (e.g. status)
// into a record's document.
func (e *Engine) PartialRecordUpdate(
	ctx context.Context, dataset *domain.Dataset, record *domain.Record, update map[string]any,
) error {
	return e.backend.UpdateDocument(ctx, IndexName(dataset.ID), record.ID.String(),
		map[string]any{"doc": update})
}

// UpdateRecordResponse merges one user's response sub-document into the
// record. The rollup status field follows via the mapping's copy rule.
func (e *Engine) UpdateRecordResponse(
	ctx context.Context, dataset *domain.Dataset, response domain.Response,
) error {
	return e.backend.UpdateDocument(ctx, IndexName(dataset.ID), response.RecordID.String(),
		map[string]any{"doc": map[string]any{"responses": responsesToDocument([]domain.Response{response})}})
}

// DeleteRecordResponse removes one user's response sub-document. Deleting a
// nested key is not expressible as a plain merge, so this is a scripted
// removal by user path.
func (e *Engine) DeleteRecordResponse(
	ctx context.Context, dataset *domain.Dataset, response domain.Response,
) error {
	script := fmt.Sprintf(`ctx._source["responses"].remove(%q)`, response.UserID.String())
	return e.backend.UpdateDocument(ctx, IndexName(dataset.ID), response.RecordID.String(),
		map[string]any{"script": script})
}

// UpdateRecordSuggestion merges one suggestion sub-document keyed by question
// name.
func (e *Engine) UpdateRecordSuggestion(
	ctx context.Context, dataset *domain.Dataset, suggestion domain.Suggestion,
) error {
	return e.backend.UpdateDocument(ctx, IndexName(dataset.ID), suggestion.RecordID.String(),
		map[string]any{"doc": map[string]any{"suggestions": suggestionsToDocument([]domain.Suggestion{suggestion})}})
}

// DeleteRecordSuggestion removes one suggestion sub-document by question name.
func (e *Engine) DeleteRecordSuggestion(
	ctx context.Context, dataset *domain.Dataset, suggestion domain.Suggestion,
) error {
	script := fmt.Sprintf(`ctx._source["suggestions"].remove(%q)`, suggestion.QuestionName)
	return e.backend.UpdateDocument(ctx, IndexName(dataset.ID), suggestion.RecordID.String(),
		map[string]any{"script": script})
}

// SetRecordsVectors bulk-updates one vector value per record.
func (e *Engine) SetRecordsVectors(ctx context.Context, dataset *domain.Dataset, vectors []domain.Vector) error {
	index := IndexName(dataset.ID)

	actions := make([]BulkAction, 0, len(vectors))
	for _, vector := range vectors {
		actions = append(actions, BulkAction{
			Op:    BulkUpdate,
			Index: index,
			ID:    vector.RecordID.String(),
			Doc:   map[string]any{FieldForVectorSettings(domain.VectorSettings{ID: vector.VectorSettingsID}): vector.Value},
		})
	}

	return e.backend.Bulk(ctx, actions)
}

// SearchOptions parameterizes a full-text and filtered search.
type SearchOptions struct {
	// Query is the text query; nil matches all documents.
	Query *query.Text
	// Filter constrains matches without affecting scores.
	Filter query.Filter
	// Sort overrides relevance order.
	Sort []query.Order
	// Offset and Limit paginate results. A zero Limit means
	// DefaultSearchLimit.
	Offset int
	Limit  int
	// UserID seeds a deterministic per-user pseudo-random ordering so each
	// annotator sees a different but stable record order.
	UserID *uuid.UUID
}

// Search runs a full-text query with optional filter, sort and pagination,
// returning normalized hits and the total count.
func (e *Engine) Search(ctx context.Context, dataset *domain.Dataset, opts SearchOptions) (SearchResponses, error) {
	index := IndexName(dataset.ID)

	boolBody := map[string]any{"must": []map[string]any{textQuery(dataset, opts.Query)}}
	if opts.Filter != nil {
		liveMapping, err := e.backend.GetMapping(ctx, index)
		if err != nil {
			return SearchResponses{}, err
		}
		compiled, err := compileFilter(opts.Filter, liveMapping)
		if err != nil {
			return SearchResponses{}, err
		}
		boolBody["filter"] = compiled
	}
	searchQuery := map[string]any{"bool": boolBody}

	if opts.UserID != nil {
		searchQuery = map[string]any{
			"function_score": map[string]any{
				"query": searchQuery,
				"functions": []map[string]any{
					{"random_score": map[string]any{"seed": opts.UserID.String(), "field": "_seq_no"}},
				},
			},
		}
	}

	var sortSpec string
	if len(opts.Sort) > 0 {
		var err error
		sortSpec, err = compileSort(opts.Sort)
		if err != nil {
			return SearchResponses{}, err
		}
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	result, err := e.backend.Search(ctx, index, &SearchQuery{
		Query: searchQuery,
		From:  opts.Offset,
		Size:  limit,
		Sort:  sortSpec,
	})
	if err != nil {
		return SearchResponses{}, err
	}

	return processSearchResult(result, nil)
}

// SimilaritySearchOptions parameterizes a similarity search. Exactly one of
// Value or Record must be set.
type SimilaritySearchOptions struct {
	Settings domain.VectorSettings
	// Value is a raw query vector.
	Value []float32
	// Record references a stored vector; the record itself is excluded from
	// the results.
	Record *domain.Record
	// Query and Filter further constrain matches.
	Query  *query.Text
	Filter query.Filter
	// MaxResults caps the hits; zero means DefaultSearchLimit.
	MaxResults int
	Order      domain.SimilarityOrder
	// Threshold drops hits scoring below it, applied client-side after
	// retrieval.
	Threshold *float64
}

// SimilaritySearch retrieves the nearest (or farthest) records by vector
// similarity, optionally constrained by a text query and a filter.
func (e *Engine) SimilaritySearch(
	ctx context.Context, dataset *domain.Dataset, opts SimilaritySearchOptions,
) (SearchResponses, error) {
	if (len(opts.Value) > 0) == (opts.Record != nil) {
		return SearchResponses{}, fmt.Errorf(
			"%w: must provide either a vector value or a record for similarity search", ErrUsage)
	}

	index := IndexName(dataset.ID)

	value := opts.Value
	var excludedID *uuid.UUID
	if opts.Record != nil {
		value = opts.Record.VectorValue(opts.Settings)
		if len(value) == 0 {
			return SearchResponses{}, fmt.Errorf(
				"%w: record %s has no vector for settings %q", ErrUsage, opts.Record.ID, opts.Settings.Name)
		}
		excludedID = &opts.Record.ID
	}

	if opts.Order == domain.SimilarityOrderLeastSimilar {
		value = inverseVector(value)
	}

	var filters []map[string]any
	if opts.Filter != nil {
		liveMapping, err := e.backend.GetMapping(ctx, index)
		if err != nil {
			return SearchResponses{}, err
		}
		compiled, err := compileFilter(opts.Filter, liveMapping)
		if err != nil {
			return SearchResponses{}, err
		}
		filters = append(filters, compiled)
	}
	if opts.Query != nil {
		filters = append(filters, textQuery(dataset, opts.Query))
	}

	k := opts.MaxResults
	if k <= 0 {
		k = DefaultSearchLimit
	}

	result, err := e.backend.SimilaritySearch(ctx, index, &SimilarityQuery{
		Settings:   opts.Settings,
		Value:      value,
		K:          k,
		ExcludedID: excludedID,
		Filters:    filters,
	})
	if err != nil {
		return SearchResponses{}, err
	}

	return processSearchResult(result, opts.Threshold)
}

// ComputeMetricsFor aggregates metrics for one metadata property: distinct
// value counts for terms properties, min/max stats for numeric ones. Property
// types without a metric return nil.
func (e *Engine) ComputeMetricsFor(
	ctx context.Context, dataset *domain.Dataset, property domain.MetadataProperty,
) (MetadataMetrics, error) {
	index := IndexName(dataset.ID)

	switch property.Type {
	case domain.MetadataPropertyTypeTerms:
		return e.metricsForTermsProperty(ctx, index, property)
	case domain.MetadataPropertyTypeInteger, domain.MetadataPropertyTypeFloat:
		return e.metricsForNumericProperty(ctx, index, property)
	default:
		return nil, nil
	}
}

func (e *Engine) metricsForTermsProperty(
	ctx context.Context, index string, property domain.MetadataProperty,
) (MetadataMetrics, error) {
	field := fieldForMetadataProperty(property.Name)

	countResult, err := e.backend.Search(ctx, index, &SearchQuery{
		Query:        map[string]any{"match_all": map[string]any{}},
		Aggregations: map[string]any{valueCountAggregation: map[string]any{"value_count": map[string]any{"field": field}}},
	})
	if err != nil {
		return nil, err
	}
	total := int64(countResult.Aggregations[valueCountAggregation].Value)
	if total == 0 {
		return TermsMetrics{Total: 0}, nil
	}

	size := total
	if maxSize := int64(e.cfg.MaxTermsSize); size > maxSize {
		size = maxSize
	}
	termsResult, err := e.backend.Search(ctx, index, &SearchQuery{
		Query:        map[string]any{"match_all": map[string]any{}},
		Aggregations: map[string]any{termsAggregation: map[string]any{"terms": map[string]any{"field": field, "size": size}}},
	})
	if err != nil {
		return nil, err
	}

	buckets := termsResult.Aggregations[termsAggregation].Buckets
	values := make([]TermCount, 0, len(buckets))
	for _, bucket := range buckets {
		values = append(values, TermCount{Term: fmt.Sprintf("%v", bucket.Key), Count: bucket.DocCount})
	}
	return TermsMetrics{Total: total, Values: values}, nil
}

func (e *Engine) metricsForNumericProperty(
	ctx context.Context, index string, property domain.MetadataProperty,
) (MetadataMetrics, error) {
	field := fieldForMetadataProperty(property.Name)

	result, err := e.backend.Search(ctx, index, &SearchQuery{
		Query:        map[string]any{"match_all": map[string]any{}},
		Aggregations: map[string]any{statsAggregation: map[string]any{"stats": map[string]any{"field": field}}},
	})
	if err != nil {
		return nil, err
	}

	stats := result.Aggregations[statsAggregation]
	return NumericMetrics{Min: stats.Min, Max: stats.Max}, nil
}

// indexSettings returns the index creation settings from the engine config.
func (e *Engine) indexSettings() map[string]any {
	return map[string]any{
		"index.mapping.total_fields.limit": e.cfg.TotalFieldsLimit,
		"max_result_window":                e.cfg.MaxResultWindow,
		"number_of_shards":                 e.cfg.NumberOfShards,
		"number_of_replicas":               e.cfg.NumberOfReplicas,
	}
}

// processSearchResult normalizes a raw search result, applying the optional
// score threshold client-side.
func processSearchResult(result *SearchResult, threshold *float64) (SearchResponses, error) {
	items := make([]SearchResponseItem, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		if threshold != nil && (hit.Score == nil || *hit.Score < *threshold) {
			continue
		}
		recordID, err := uuid.Parse(hit.ID)
		if err != nil {
			return SearchResponses{}, fmt.Errorf("parse hit id %q: %w", hit.ID, err)
		}
		items = append(items, SearchResponseItem{RecordID: recordID, Score: hit.Score})
	}
	return SearchResponses{Items: items, Total: result.Hits.Total.Value}, nil
}

func inverseVector(value []float32) []float32 {
	inverse := make([]float32, len(value))
	for i, v := range value {
		inverse[i] = -v
	}
	return inverse
}
