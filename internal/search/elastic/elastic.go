// Package elastic implements the search backend on Elasticsearch 8.
package elastic

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/search"
)

const backendName = "elasticsearch"

// Config holds the Elasticsearch connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Backend is the Elasticsearch implementation of search.Backend.
type Backend struct {
	client *elasticsearch.Client
}

// New creates an Elasticsearch backend.
func New(cfg Config) (*Backend, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.InsecureSkipVerify {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via config
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return &Backend{client: client}, nil
}

// Name identifies the backend.
func (b *Backend) Name() string { return backendName }

// Ping checks backend connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	res, err := b.client.Ping(b.client.Ping.WithContext(ctx))
	if err != nil {
		return wrapErr(search.OpPing, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpPing, res)
}

// CreateIndex creates an index with the given settings and mappings.
func (b *Backend) CreateIndex(ctx context.Context, index string, settings, mappings map[string]any) error {
	body, err := json.Marshal(map[string]any{"settings": settings, "mappings": mappings})
	if err != nil {
		return fmt.Errorf("encode index body: %w", err)
	}

	res, err := b.client.Indices.Create(
		index,
		b.client.Indices.Create.WithContext(ctx),
		b.client.Indices.Create.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return wrapErr(search.OpCreateIndex, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpCreateIndex, res)
}

// DeleteIndex removes an index.
func (b *Backend) DeleteIndex(ctx context.Context, index string) error {
	res, err := b.client.Indices.Delete(
		[]string{index},
		b.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return wrapErr(search.OpDeleteIndex, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpDeleteIndex, res)
}

// IndexExists reports whether an index exists.
func (b *Backend) IndexExists(ctx context.Context, index string) (bool, error) {
	res, err := b.client.Indices.Exists(
		[]string{index},
		b.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, wrapErr(search.OpIndexExists, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, wrapErr(search.OpIndexExists, fmt.Errorf("unexpected status %s", res.Status()))
	}
}

// PutMapping adds mapping properties to an existing index.
func (b *Backend) PutMapping(ctx context.Context, index string, properties map[string]any) error {
	body, err := json.Marshal(map[string]any{"properties": properties})
	if err != nil {
		return fmt.Errorf("encode mapping body: %w", err)
	}

	res, err := b.client.Indices.PutMapping(
		[]string{index},
		bytes.NewReader(body),
		b.client.Indices.PutMapping.WithContext(ctx),
	)
	if err != nil {
		return wrapErr(search.OpPutMapping, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpPutMapping, res)
}

// GetMapping returns the live mapping properties tree of an index.
func (b *Backend) GetMapping(ctx context.Context, index string) (map[string]any, error) {
	res, err := b.client.Indices.GetMapping(
		b.client.Indices.GetMapping.WithIndex(index),
		b.client.Indices.GetMapping.WithContext(ctx),
	)
	if err != nil {
		return nil, wrapErr(search.OpGetMapping, err)
	}
	defer res.Body.Close()
	if err := checkResponse(search.OpGetMapping, res); err != nil {
		return nil, err
	}

	return decodeMappingProperties(res.Body)
}

// UpdateDocument applies a partial update body to one document.
func (b *Backend) UpdateDocument(ctx context.Context, index, id string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode update body: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      index,
		DocumentID: id,
		Body:       bytes.NewReader(payload),
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return wrapErr(search.OpUpdateDocument, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpUpdateDocument, res)
}

// Bulk submits all actions as one batched request. Per-item results are not
// inspected.
func (b *Backend) Bulk(ctx context.Context, actions []search.BulkAction) error {
	body, err := encodeBulkBody(actions)
	if err != nil {
		return err
	}

	res, err := b.client.Bulk(
		bytes.NewReader(body),
		b.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return wrapErr(search.OpBulk, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpBulk, res)
}

// Refresh makes recent writes visible to search.
func (b *Backend) Refresh(ctx context.Context, index string) error {
	res, err := b.client.Indices.Refresh(
		b.client.Indices.Refresh.WithIndex(index),
		b.client.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return wrapErr(search.OpRefresh, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpRefresh, res)
}

// Search runs a compiled query with optional aggregations, pagination and
// sort.
func (b *Backend) Search(ctx context.Context, index string, q *search.SearchQuery) (*search.SearchResult, error) {
	body := map[string]any{
		"query": q.Query,
		"from":  q.From,
		"size":  q.Size,
	}
	if len(q.Aggregations) > 0 {
		body["aggs"] = q.Aggregations
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode search body: %w", err)
	}

	opts := []func(*esapi.SearchRequest){
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(index),
		b.client.Search.WithBody(bytes.NewReader(payload)),
		b.client.Search.WithTrackTotalHits(true),
	}
	if q.Sort != "" {
		opts = append(opts, b.client.Search.WithSort(q.Sort))
	}

	res, err := b.client.Search(opts...)
	if err != nil {
		return nil, wrapErr(search.OpSearch, err)
	}
	defer res.Body.Close()
	if err := checkResponse(search.OpSearch, res); err != nil {
		return nil, err
	}

	return decodeSearchResult(res.Body)
}

// SimilaritySearch runs a top-level knn search against one vector field.
func (b *Backend) SimilaritySearch(
	ctx context.Context, index string, q *search.SimilarityQuery,
) (*search.SearchResult, error) {
	knn := map[string]any{
		"field":          search.FieldForVectorSettings(q.Settings),
		"query_vector":   q.Value,
		"k":              q.K,
		"num_candidates": q.K,
	}
	if filter := knnFilter(q); filter != nil {
		knn["filter"] = filter
	}

	payload, err := json.Marshal(map[string]any{
		"knn":     knn,
		"size":    q.K,
		"_source": false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode knn body: %w", err)
	}

	res, err := b.client.Search(
		b.client.Search.WithContext(ctx),
		b.client.Search.WithIndex(index),
		b.client.Search.WithBody(bytes.NewReader(payload)),
		b.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return nil, wrapErr(search.OpSimilaritySearch, err)
	}
	defer res.Body.Close()
	if err := checkResponse(search.OpSimilaritySearch, res); err != nil {
		return nil, err
	}

	return decodeSearchResult(res.Body)
}

// MappingForVectorSettings returns the dense_vector mapping fragment for one
// vector settings definition.
func (b *Backend) MappingForVectorSettings(settings domain.VectorSettings) map[string]any {
	return map[string]any{
		search.FieldForVectorSettings(settings): map[string]any{
			"type":       "dense_vector",
			"dims":       settings.Dimensions,
			"index":      true,
			"similarity": "cosine",
		},
	}
}

// knnFilter combines the compiled query filters and the excluded-record
// constraint into one bool query, or nil when neither is present.
func knnFilter(q *search.SimilarityQuery) map[string]any {
	boolBody := map[string]any{}
	if len(q.Filters) > 0 {
		boolBody["filter"] = q.Filters
	}
	if q.ExcludedID != nil {
		boolBody["must_not"] = map[string]any{
			"ids": map[string]any{"values": []string{q.ExcludedID.String()}},
		}
	}
	if len(boolBody) == 0 {
		return nil
	}
	return map[string]any{"bool": boolBody}
}

func encodeBulkBody(actions []search.BulkAction) ([]byte, error) {
	var buf bytes.Buffer
	for _, action := range actions {
		meta := map[string]any{
			string(action.Op): map[string]any{"_index": action.Index, "_id": action.ID},
		}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return nil, fmt.Errorf("encode bulk action: %w", err)
		}

		switch action.Op {
		case search.BulkIndex:
			if err := json.NewEncoder(&buf).Encode(action.Doc); err != nil {
				return nil, fmt.Errorf("encode bulk document: %w", err)
			}
		case search.BulkUpdate:
			if err := json.NewEncoder(&buf).Encode(map[string]any{"doc": action.Doc}); err != nil {
				return nil, fmt.Errorf("encode bulk document: %w", err)
			}
		case search.BulkDelete:
			// delete actions have no source line
		}
	}
	return buf.Bytes(), nil
}

func decodeSearchResult(body io.Reader) (*search.SearchResult, error) {
	var result search.SearchResult
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &result, nil
}

func decodeMappingProperties(body io.Reader) (map[string]any, error) {
	var payload map[string]struct {
		Mappings struct {
			Properties map[string]any `json:"properties"`
		} `json:"mappings"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode mapping response: %w", err)
	}
	for _, def := range payload {
		return def.Mappings.Properties, nil
	}
	return map[string]any{}, nil
}

func checkResponse(op string, res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return wrapErr(op, fmt.Errorf("status %s: %s", res.Status(), body))
}

func wrapErr(op string, err error) error {
	return &search.BackendError{Backend: backendName, Op: op, Err: err}
}
