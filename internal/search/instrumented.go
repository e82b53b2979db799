package search

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/metrics"
)

// InstrumentedBackend wraps a Backend with prometheus metrics and logging for
// every primitive. The engine stays observability-free.
type InstrumentedBackend struct {
	inner  Backend
	logger *zap.Logger
}

// NewInstrumentedBackend wraps a backend with observability.
func NewInstrumentedBackend(inner Backend, logger *zap.Logger) *InstrumentedBackend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedBackend{inner: inner, logger: logger}
}

// Name identifies the wrapped backend.
func (b *InstrumentedBackend) Name() string { return b.inner.Name() }

func (b *InstrumentedBackend) observe(op string, start time.Time, err error) {
	duration := time.Since(start)
	status := "ok"
	if err != nil {
		status = "error"
		b.logger.Error("backend request failed",
			zap.String("backend", b.inner.Name()),
			zap.String("operation", op),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
	} else {
		b.logger.Debug("backend request completed",
			zap.String("backend", b.inner.Name()),
			zap.String("operation", op),
			zap.Duration("duration", duration),
		)
	}
	metrics.BackendRequestDuration.WithLabelValues(b.inner.Name(), op).Observe(duration.Seconds())
	metrics.BackendRequestsTotal.WithLabelValues(b.inner.Name(), op, status).Inc()
}

// Ping delegates to the wrapped backend.
func (b *InstrumentedBackend) Ping(ctx context.Context) error {
	start := time.Now()
	err := b.inner.Ping(ctx)
	b.observe(OpPing, start, err)
	return err
}

// CreateIndex delegates to the wrapped backend.
func (b *InstrumentedBackend) CreateIndex(ctx context.Context, index string, settings, mappings map[string]any) error {
	start := time.Now()
	err := b.inner.CreateIndex(ctx, index, settings, mappings)
	b.observe(OpCreateIndex, start, err)
	return err
}

// DeleteIndex delegates to the wrapped backend.
func (b *InstrumentedBackend) DeleteIndex(ctx context.Context, index string) error {
	start := time.Now()
	err := b.inner.DeleteIndex(ctx, index)
	b.observe(OpDeleteIndex, start, err)
	return err
}

// IndexExists delegates to the wrapped backend.
func (b *InstrumentedBackend) IndexExists(ctx context.Context, index string) (bool, error) {
	start := time.Now()
	exists, err := b.inner.IndexExists(ctx, index)
	b.observe(OpIndexExists, start, err)
	return exists, err
}

// PutMapping delegates to the wrapped backend.
func (b *InstrumentedBackend) PutMapping(ctx context.Context, index string, properties map[string]any) error {
	start := time.Now()
	err := b.inner.PutMapping(ctx, index, properties)
	b.observe(OpPutMapping, start, err)
	return err
}

// GetMapping delegates to the wrapped backend.
func (b *InstrumentedBackend) GetMapping(ctx context.Context, index string) (map[string]any, error) {
	start := time.Now()
	mapping, err := b.inner.GetMapping(ctx, index)
	b.observe(OpGetMapping, start, err)
	return mapping, err
}

// UpdateDocument delegates to the wrapped backend.
func (b *InstrumentedBackend) UpdateDocument(ctx context.Context, index, id string, body map[string]any) error {
	start := time.Now()
	err := b.inner.UpdateDocument(ctx, index, id, body)
	b.observe(OpUpdateDocument, start, err)
	return err
}

// Bulk delegates to the wrapped backend.
func (b *InstrumentedBackend) Bulk(ctx context.Context, actions []BulkAction) error {
	start := time.Now()
	err := b.inner.Bulk(ctx, actions)
	b.observe(OpBulk, start, err)
	return err
}

// Refresh delegates to the wrapped backend.
func (b *InstrumentedBackend) Refresh(ctx context.Context, index string) error {
	start := time.Now()
	err := b.inner.Refresh(ctx, index)
	b.observe(OpRefresh, start, err)
	return err
}

// Search delegates to the wrapped backend.
func (b *InstrumentedBackend) Search(ctx context.Context, index string, q *SearchQuery) (*SearchResult, error) {
	start := time.Now()
	result, err := b.inner.Search(ctx, index, q)
	b.observe(OpSearch, start, err)
	return result, err
}

// SimilaritySearch delegates to the wrapped backend.
func (b *InstrumentedBackend) SimilaritySearch(
	ctx context.Context, index string, q *SimilarityQuery,
) (*SearchResult, error) {
	start := time.Now()
	result, err := b.inner.SimilaritySearch(ctx, index, q)
	b.observe(OpSimilaritySearch, start, err)
	return result, err
}

// MappingForVectorSettings delegates to the wrapped backend.
func (b *InstrumentedBackend) MappingForVectorSettings(settings domain.VectorSettings) map[string]any {
	return b.inner.MappingForVectorSettings(settings)
}
