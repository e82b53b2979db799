package search

import (
	"time"

	"github.com/ACMCMC/argilla/internal/domain"
)

// recordToDocument converts a record into its backend document. Empty
// metadata/responses/suggestions/vectors blocks are omitted entirely, not
// emitted as empty objects; the strict root mapping depends on that.
func recordToDocument(record *domain.Record, dataset *domain.Dataset) map[string]any {
	document := map[string]any{
		"id":          record.ID.String(),
		"fields":      record.Fields,
		"status":      string(record.Status),
		"inserted_at": record.InsertedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":  record.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}

	if len(record.Metadata) > 0 {
		document["metadata"] = metadataToDocument(record.Metadata, dataset.MetadataProperties)
	}
	if len(record.Responses) > 0 {
		document["responses"] = responsesToDocument(record.Responses)
	}
	if len(record.Suggestions) > 0 {
		document["suggestions"] = suggestionsToDocument(record.Suggestions)
	}
	if len(record.Vectors) > 0 {
		document["vectors"] = vectorsToDocument(record.Vectors)
	}

	return document
}

// responsesToDocument keys each response by its user identity. The rollup
// status field is never written here; the backend's dynamic template copies
// it from the per-user status fields.
func responsesToDocument(responses []domain.Response) map[string]any {
	document := make(map[string]any, len(responses))
	for _, response := range responses {
		var values map[string]any
		if len(response.Values) > 0 {
			values = response.Values
		}
		document[response.UserID.String()] = map[string]any{
			"values": values,
			"status": string(response.Status),
		}
	}
	return document
}

// suggestionsToDocument keys each suggestion by its question name.
func suggestionsToDocument(suggestions []domain.Suggestion) map[string]any {
	document := make(map[string]any, len(suggestions))
	for _, suggestion := range suggestions {
		document[suggestion.QuestionName] = map[string]any{
			"type":  suggestion.Type,
			"agent": suggestion.Agent,
			"score": suggestion.Score,
			"value": suggestion.Value,
		}
	}
	return document
}

// vectorsToDocument keys each vector by its vector-settings identity.
func vectorsToDocument(vectors []domain.Vector) map[string]any {
	document := make(map[string]any, len(vectors))
	for _, vector := range vectors {
		document[vector.VectorSettingsID.String()] = vector.Value
	}
	return document
}

// metadataToDocument keeps only values with a configured metadata property.
// Absent values are omitted, never stored as null.
func metadataToDocument(metadata map[string]any, properties []domain.MetadataProperty) map[string]any {
	document := make(map[string]any, len(properties))
	for _, property := range properties {
		if value, ok := metadata[property.Name]; ok && value != nil {
			document[property.Name] = value
		}
	}
	return document
}
