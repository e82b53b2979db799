package elastic

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/search"
)

func searchVectorSettings(t *testing.T) domain.VectorSettings {
	t.Helper()
	return domain.VectorSettings{ID: uuid.New(), Name: "embedding", Dimensions: 384}
}

func TestEncodeBulkBody(t *testing.T) {
	actions := []search.BulkAction{
		{Op: search.BulkIndex, Index: "rg.a", ID: "1", Doc: map[string]any{"status": "pending"}},
		{Op: search.BulkUpdate, Index: "rg.a", ID: "2", Doc: map[string]any{"status": "completed"}},
		{Op: search.BulkDelete, Index: "rg.a", ID: "3"},
	}

	body, err := encodeBulkBody(actions)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(string(body), "\n"), "\n")
	// index: meta+doc, update: meta+doc, delete: meta only
	if len(lines) != 5 {
		t.Fatalf("expected 5 NDJSON lines, got %d: %q", len(lines), lines)
	}
	if !strings.Contains(lines[0], `"index"`) || !strings.Contains(lines[0], `"_id":"1"`) {
		t.Errorf("unexpected index meta line: %q", lines[0])
	}
	if !strings.Contains(lines[3], `"doc"`) {
		t.Errorf("expected the update source wrapped in doc, got %q", lines[3])
	}
	if !strings.Contains(lines[4], `"delete"`) {
		t.Errorf("unexpected delete meta line: %q", lines[4])
	}
}

func TestKnnFilter(t *testing.T) {
	if f := knnFilter(&search.SimilarityQuery{}); f != nil {
		t.Errorf("expected no filter, got %v", f)
	}

	excluded := uuid.New()
	f := knnFilter(&search.SimilarityQuery{
		Filters:    []map[string]any{{"terms": map[string]any{"metadata.source": []string{"web"}}}},
		ExcludedID: &excluded,
	})
	boolBody := f["bool"].(map[string]any)
	if _, ok := boolBody["filter"]; !ok {
		t.Error("expected compiled filters kept")
	}
	mustNot := boolBody["must_not"].(map[string]any)
	ids := mustNot["ids"].(map[string]any)["values"].([]string)
	if len(ids) != 1 || ids[0] != excluded.String() {
		t.Errorf("expected the excluded id, got %v", ids)
	}
}

func TestDecodeMappingProperties(t *testing.T) {
	payload := `{
		"rg.xyz": {
			"mappings": {
				"properties": {
					"id": {"type": "keyword"},
					"responses": {"properties": {}}
				}
			}
		}
	}`

	properties, err := decodeMappingProperties(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := properties["id"]; !ok {
		t.Errorf("expected the properties tree of the index, got %v", properties)
	}
}

func TestDecodeMappingProperties_EmptyResponse(t *testing.T) {
	properties, err := decodeMappingProperties(strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(properties) != 0 {
		t.Errorf("expected an empty tree, got %v", properties)
	}
}

func TestMappingForVectorSettings(t *testing.T) {
	b := &Backend{}
	settings := searchVectorSettings(t)

	fragment := b.MappingForVectorSettings(settings)
	mapping := fragment["vectors."+settings.ID.String()].(map[string]any)
	if mapping["type"] != "dense_vector" {
		t.Errorf("expected dense_vector, got %v", mapping["type"])
	}
	if mapping["dims"] != 384 {
		t.Errorf("expected dims 384, got %v", mapping["dims"])
	}
	if mapping["similarity"] != "cosine" {
		t.Errorf("expected cosine similarity, got %v", mapping["similarity"])
	}
}
