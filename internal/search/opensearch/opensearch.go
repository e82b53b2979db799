// Package opensearch implements the search backend on OpenSearch.
package opensearch

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	opensearchclient "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/search"
)

const backendName = "opensearch"

// Config holds the OpenSearch connection settings.
type Config struct {
	Addresses []string
	Username  string
	Password  string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Backend is the OpenSearch implementation of search.Backend.
type Backend struct {
	client *opensearchclient.Client
}

// New creates an OpenSearch backend.
func New(cfg Config) (*Backend, error) {
	osCfg := opensearchclient.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	}
	if cfg.InsecureSkipVerify {
		osCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // opt-in via config
		}
	}

	client, err := opensearchclient.NewClient(osCfg)
	if err != nil {
		return nil, fmt.Errorf("create opensearch client: %w", err)
	}
	return &Backend{client: client}, nil
}

// Name identifies the backend.
func (b *Backend) Name() string { return backendName }

// Ping checks backend connectivity.
func (b *Backend) Ping(ctx context.Context) error {
	req := opensearchapi.PingRequest{}
	res, err := req.Do(ctx, b.client)
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

	req := opensearchapi.IndicesCreateRequest{Index: index, Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return wrapErr(search.OpCreateIndex, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpCreateIndex, res)
}

// DeleteIndex removes an index.
func (b *Backend) DeleteIndex(ctx context.Context, index string) error {
	req := opensearchapi.IndicesDeleteRequest{Index: []string{index}}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return wrapErr(search.OpDeleteIndex, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpDeleteIndex, res)
}

// IndexExists reports whether an index exists.
func (b *Backend) IndexExists(ctx context.Context, index string) (bool, error) {
	req := opensearchapi.IndicesExistsRequest{Index: []string{index}}
	res, err := req.Do(ctx, b.client)
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

	req := opensearchapi.IndicesPutMappingRequest{Index: []string{index}, Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return wrapErr(search.OpPutMapping, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpPutMapping, res)
}

// GetMapping returns the live mapping properties tree of an index.
func (b *Backend) GetMapping(ctx context.Context, index string) (map[string]any, error) {
	req := opensearchapi.IndicesGetMappingRequest{Index: []string{index}}
	res, err := req.Do(ctx, b.client)
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

	req := opensearchapi.UpdateRequest{Index: index, DocumentID: id, Body: bytes.NewReader(payload)}
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

	req := opensearchapi.BulkRequest{Body: bytes.NewReader(body)}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return wrapErr(search.OpBulk, err)
	}
	defer res.Body.Close()
	return checkResponse(search.OpBulk, res)
}

// Refresh makes recent writes visible to search.
func (b *Backend) Refresh(ctx context.Context, index string) error {
	req := opensearchapi.IndicesRefreshRequest{Index: []string{index}}
	res, err := req.Do(ctx, b.client)
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

	req := opensearchapi.SearchRequest{
		Index:          []string{index},
		Body:           bytes.NewReader(payload),
		TrackTotalHits: true,
	}
	if q.Sort != "" {
		req.Sort = []string{q.Sort}
	}

	res, err := req.Do(ctx, b.client)
	if err != nil {
		return nil, wrapErr(search.OpSearch, err)
	}
	defer res.Body.Close()
	if err := checkResponse(search.OpSearch, res); err != nil {
		return nil, err
	}

	return decodeSearchResult(res.Body)
}

// SimilaritySearch runs an exact knn query through the knn_score script,
// constrained by the compiled filters.
func (b *Backend) SimilaritySearch(
	ctx context.Context, index string, q *search.SimilarityQuery,
) (*search.SearchResult, error) {
	var inner map[string]any
	if filter := knnFilter(q); filter != nil {
		inner = filter
	} else {
		inner = map[string]any{"match_all": map[string]any{}}
	}

	payload, err := json.Marshal(map[string]any{
		"query": map[string]any{
			"script_score": map[string]any{
				"query": inner,
				"script": map[string]any{
					"source": "knn_score",
					"lang":   "knn",
					"params": map[string]any{
						"field":       search.FieldForVectorSettings(q.Settings),
						"query_value": q.Value,
						"space_type":  "cosinesimil",
					},
				},
			},
		},
		"size":    q.K,
		"_source": false,
	})
	if err != nil {
		return nil, fmt.Errorf("encode knn body: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index:          []string{index},
		Body:           bytes.NewReader(payload),
		TrackTotalHits: true,
	}
	res, err := req.Do(ctx, b.client)
	if err != nil {
		return nil, wrapErr(search.OpSimilaritySearch, err)
	}
	defer res.Body.Close()
	if err := checkResponse(search.OpSimilaritySearch, res); err != nil {
		return nil, err
	}

	return decodeSearchResult(res.Body)
}

// MappingForVectorSettings returns the knn_vector mapping fragment for one
// vector settings definition.
func (b *Backend) MappingForVectorSettings(settings domain.VectorSettings) map[string]any {
	return map[string]any{
		search.FieldForVectorSettings(settings): map[string]any{
			"type":      "knn_vector",
			"dimension": settings.Dimensions,
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

func checkResponse(op string, res *opensearchapi.Response) error {
	if !res.IsError() {
		return nil
	}
	body, _ := io.ReadAll(res.Body)
	return wrapErr(op, fmt.Errorf("status %s: %s", res.Status(), body))
}

func wrapErr(op string, err error) error {
	return &search.BackendError{Backend: backendName, Op: op, Err: err}
}
