package search

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/ACMCMC/argilla/internal/domain"
)

// AllResponsesStatusesField aggregates every user's response status into one
// searchable keyword field. It is populated only through the dynamic-template
// copy rule, never written by the document mapper.
const AllResponsesStatusesField = "all_responses_statuses"

// IndexName derives the backend index name from the dataset identity.
func IndexName(datasetID uuid.UUID) string {
	return "rg." + datasetID.String()
}

// FieldForVectorSettings returns the document path of a vector value.
func FieldForVectorSettings(settings domain.VectorSettings) string {
	return "vectors." + settings.ID.String()
}

func fieldForRecordField(name string) string {
	return "fields." + name
}

func fieldForMetadataProperty(name string) string {
	return "metadata." + name
}

func fieldForResponseStatus(userID uuid.UUID) string {
	return "responses." + userID.String() + ".status"
}

func fieldForResponseValue(userID uuid.UUID, question string) string {
	return "responses." + userID.String() + ".values." + question
}

func fieldForSuggestionProperty(question, property string) string {
	return "suggestions." + question + "." + property
}

// mappingForField returns the mapping fragment of a dataset field. Only text
// fields are indexable; anything else is a configuration error.
func mappingForField(field domain.Field) (map[string]any, error) {
	if field.Type != domain.FieldTypeText {
		return nil, fmt.Errorf("%w: no index mapping for field %q of type %q",
			ErrConfiguration, field.Name, field.Type)
	}
	return map[string]any{
		fieldForRecordField(field.Name): map[string]any{"type": "text"},
	}, nil
}

// mappingForMetadataProperty returns the mapping fragment of a metadata
// property. Unmapped property types are a configuration error.
func mappingForMetadataProperty(property domain.MetadataProperty) (map[string]any, error) {
	var esType string
	switch property.Type {
	case domain.MetadataPropertyTypeTerms:
		esType = "keyword"
	case domain.MetadataPropertyTypeInteger:
		esType = "long"
	case domain.MetadataPropertyTypeFloat:
		esType = "float"
	default:
		return nil, fmt.Errorf("%w: no index mapping for metadata property %q of type %q",
			ErrConfiguration, property.Name, property.Type)
	}
	return map[string]any{
		fieldForMetadataProperty(property.Name): map[string]any{"type": esType},
	}, nil
}

// mappingForQuestion returns the value mapping of a question's answer. Types
// without a structured mapping are stored but excluded from indexing, so that
// they never break strict dynamic typing.
func mappingForQuestion(question domain.Question) map[string]any {
	switch question.Type {
	case domain.QuestionTypeRating:
		return map[string]any{"type": "integer"}
	case domain.QuestionTypeLabelSelection, domain.QuestionTypeMultiLabelSelection:
		return map[string]any{"type": "keyword"}
	default:
		return map[string]any{"type": "object", "enabled": false}
	}
}

// mappingForQuestionSuggestion returns the explicit suggestion mapping for one
// question.
func mappingForQuestionSuggestion(question domain.Question) map[string]any {
	return map[string]any{
		"suggestions." + question.Name: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value": mappingForQuestion(question),
				"score": map[string]any{"type": "float"},
				"agent": map[string]any{"type": "keyword"},
				"type":  map[string]any{"type": "keyword"},
			},
		},
	}
}

// dynamicTemplates builds the response templates: a fixed rule copying every
// per-user status into the rollup field, plus one rule per question typing the
// per-user answer path. New annotating users therefore never require a
// mapping update.
func dynamicTemplates(questions []domain.Question) []map[string]any {
	templates := []map[string]any{
		{
			"status_responses": map[string]any{
				"path_match": "responses.*.status",
				"mapping": map[string]any{
					"type":    "keyword",
					"copy_to": AllResponsesStatusesField,
				},
			},
		},
	}
	for _, question := range questions {
		templates = append(templates, map[string]any{
			question.Name + "_responses": map[string]any{
				"path_match": "responses.*.values." + question.Name,
				"mapping":    mappingForQuestion(question),
			},
		})
	}
	return templates
}

// indexMappings assembles the complete index mapping for a dataset. The root
// is dynamically strict so any drift between dataset schema and document
// mapper fails at indexing time instead of silently growing the mapping.
func indexMappings(dataset *domain.Dataset, backend Backend) (map[string]any, error) {
	properties := map[string]any{
		"id":          map[string]any{"type": "keyword"},
		"status":      map[string]any{"type": "keyword"},
		"inserted_at": map[string]any{"type": "date_nanos"},
		"updated_at":  map[string]any{"type": "date_nanos"},
		"responses":   map[string]any{"dynamic": true, "type": "object"},
		// metadata values without a configured property are ignored
		"metadata":               map[string]any{"dynamic": false, "type": "object"},
		AllResponsesStatusesField: map[string]any{"type": "keyword"},
	}

	for _, field := range dataset.Fields {
		fragment, err := mappingForField(field)
		if err != nil {
			return nil, err
		}
		for k, v := range fragment {
			properties[k] = v
		}
	}
	for _, property := range dataset.MetadataProperties {
		fragment, err := mappingForMetadataProperty(property)
		if err != nil {
			return nil, err
		}
		for k, v := range fragment {
			properties[k] = v
		}
	}
	for _, question := range dataset.Questions {
		for k, v := range mappingForQuestionSuggestion(question) {
			properties[k] = v
		}
	}
	for _, settings := range dataset.VectorSettings {
		for k, v := range backend.MappingForVectorSettings(settings) {
			properties[k] = v
		}
	}

	return map[string]any{
		"dynamic":           "strict",
		"dynamic_templates": dynamicTemplates(dataset.Questions),
		"properties":        properties,
	}, nil
}
