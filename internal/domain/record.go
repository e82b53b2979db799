package domain

import (
	"time"

	"github.com/google/uuid"
)

// Record is the unit of indexing: one value per field, sparse metadata, and
// any number of responses, suggestions and vectors.
type Record struct {
	ID          uuid.UUID
	Fields      map[string]string
	Metadata    map[string]any
	Status      RecordStatus
	InsertedAt  time.Time
	UpdatedAt   time.Time
	Responses   []Response
	Suggestions []Suggestion
	Vectors     []Vector
}

// VectorValue returns the stored vector for the given vector settings, or nil
// when the record has none.
func (r *Record) VectorValue(settings VectorSettings) []float32 {
	for _, v := range r.Vectors {
		if v.VectorSettingsID == settings.ID {
			return v.Value
		}
	}
	return nil
}

// Response is one user's answer set for a record. (record, user) is unique.
type Response struct {
	ID       uuid.UUID
	RecordID uuid.UUID
	UserID   uuid.UUID
	Status   ResponseStatus
	Values   map[string]any
}

// Suggestion is a model-generated answer for one question of a record.
// (record, question) is unique.
type Suggestion struct {
	ID           uuid.UUID
	RecordID     uuid.UUID
	QuestionName string
	Type         string
	Agent        string
	Score        *float64
	Value        any
}

// Vector is a stored embedding for one vector settings of a record.
type Vector struct {
	RecordID         uuid.UUID
	VectorSettingsID uuid.UUID
	Value            []float32
}
