package search

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/ACMCMC/argilla/internal/domain"
)

func testDataset() *domain.Dataset {
	return &domain.Dataset{
		ID:   uuid.New(),
		Name: "test-dataset",
		Fields: []domain.Field{
			{ID: uuid.New(), Name: "prompt", Type: domain.FieldTypeText},
			{ID: uuid.New(), Name: "completion", Type: domain.FieldTypeText},
		},
		Questions: []domain.Question{
			{ID: uuid.New(), Name: "rating", Type: domain.QuestionTypeRating},
			{ID: uuid.New(), Name: "sentiment", Type: domain.QuestionTypeLabelSelection},
		},
		MetadataProperties: []domain.MetadataProperty{
			{ID: uuid.New(), Name: "source", Type: domain.MetadataPropertyTypeTerms},
			{ID: uuid.New(), Name: "tokens", Type: domain.MetadataPropertyTypeInteger},
		},
		VectorSettings: []domain.VectorSettings{
			{ID: uuid.New(), Name: "embedding", Dimensions: 4},
		},
	}
}

func TestIndexName(t *testing.T) {
	id := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	got := IndexName(id)
	want := "rg.00000000-0000-0000-0000-000000000001"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestIndexMappings_Shape(t *testing.T) {
	dataset := testDataset()
	backend := newFakeBackend()

	mappings, err := indexMappings(dataset, backend)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if mappings["dynamic"] != "strict" {
		t.Errorf("expected strict root dynamic, got %v", mappings["dynamic"])
	}

	properties, ok := mappings["properties"].(map[string]any)
	if !ok {
		t.Fatal("expected a properties tree")
	}

	for _, path := range []string{
		"id", "status", "inserted_at", "updated_at", "responses", "metadata",
		AllResponsesStatusesField,
		"fields.prompt", "fields.completion",
		"metadata.source", "metadata.tokens",
		"suggestions.rating", "suggestions.sentiment",
		"vectors." + dataset.VectorSettings[0].ID.String(),
	} {
		if _, ok := properties[path]; !ok {
			t.Errorf("expected mapping for %q", path)
		}
	}

	// 7 fixed + 2 fields + 2 metadata + 2 suggestions + 1 vector
	if len(properties) != 14 {
		t.Errorf("expected 14 mapped properties, got %d", len(properties))
	}
}

func TestIndexMappings_DynamicTemplates(t *testing.T) {
	dataset := testDataset()

	mappings, err := indexMappings(dataset, newFakeBackend())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	templates, ok := mappings["dynamic_templates"].([]map[string]any)
	if !ok {
		t.Fatal("expected dynamic templates")
	}
	// one fixed status rule plus one per question
	if len(templates) != 3 {
		t.Fatalf("expected 3 templates, got %d", len(templates))
	}

	status, ok := templates[0]["status_responses"].(map[string]any)
	if !ok {
		t.Fatal("expected the status template first")
	}
	if status["path_match"] != "responses.*.status" {
		t.Errorf("unexpected status path_match: %v", status["path_match"])
	}
	statusMapping := status["mapping"].(map[string]any)
	if statusMapping["copy_to"] != AllResponsesStatusesField {
		t.Errorf("expected status copy_to rollup field, got %v", statusMapping["copy_to"])
	}

	rating, ok := templates[1]["rating_responses"].(map[string]any)
	if !ok {
		t.Fatal("expected a rating_responses template")
	}
	if rating["path_match"] != "responses.*.values.rating" {
		t.Errorf("unexpected rating path_match: %v", rating["path_match"])
	}
	ratingMapping := rating["mapping"].(map[string]any)
	if ratingMapping["type"] != "integer" {
		t.Errorf("expected integer mapping for rating answers, got %v", ratingMapping["type"])
	}
}

func TestIndexMappings_UnsupportedFieldType(t *testing.T) {
	dataset := testDataset()
	dataset.Fields = append(dataset.Fields, domain.Field{
		ID: uuid.New(), Name: "screenshot", Type: domain.FieldTypeImage,
	})

	_, err := indexMappings(dataset, newFakeBackend())
	if err == nil {
		t.Fatal("expected error for image field")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("expected a configuration error, got %v", err)
	}
	if !strings.Contains(err.Error(), "screenshot") {
		t.Errorf("expected the field name in the error, got %v", err)
	}
}

func TestIndexMappings_UnsupportedMetadataType(t *testing.T) {
	dataset := testDataset()
	dataset.MetadataProperties = append(dataset.MetadataProperties, domain.MetadataProperty{
		ID: uuid.New(), Name: "weird", Type: domain.MetadataPropertyType("geo"),
	})

	_, err := indexMappings(dataset, newFakeBackend())
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected a configuration error, got %v", err)
	}
}

func TestMappingForQuestion_UnmappedTypesDegrade(t *testing.T) {
	tests := []struct {
		qtype domain.QuestionType
		want  string
	}{
		{domain.QuestionTypeRating, "integer"},
		{domain.QuestionTypeLabelSelection, "keyword"},
		{domain.QuestionTypeMultiLabelSelection, "keyword"},
		{domain.QuestionTypeText, "object"},
		{domain.QuestionTypeRanking, "object"},
		{domain.QuestionTypeSpan, "object"},
	}
	for _, tt := range tests {
		mapping := mappingForQuestion(domain.Question{Name: "q", Type: tt.qtype})
		if mapping["type"] != tt.want {
			t.Errorf("%s: expected type %q, got %v", tt.qtype, tt.want, mapping["type"])
		}
		if tt.want == "object" && mapping["enabled"] != false {
			t.Errorf("%s: expected stored-but-unindexed object mapping", tt.qtype)
		}
	}
}

func TestMappingForQuestionSuggestion(t *testing.T) {
	question := domain.Question{Name: "sentiment", Type: domain.QuestionTypeLabelSelection}
	fragment := mappingForQuestionSuggestion(question)

	suggestion, ok := fragment["suggestions.sentiment"].(map[string]any)
	if !ok {
		t.Fatal("expected suggestions.sentiment mapping")
	}
	props := suggestion["properties"].(map[string]any)
	for _, key := range []string{"value", "score", "agent", "type"} {
		if _, ok := props[key]; !ok {
			t.Errorf("expected suggestion property %q", key)
		}
	}
	value := props["value"].(map[string]any)
	if value["type"] != "keyword" {
		t.Errorf("expected keyword value mapping, got %v", value["type"])
	}
}
