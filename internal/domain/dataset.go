// Package domain holds the read-only snapshots of datasets, records and their
// annotations as handed over by the persistence layer. The search layer never
// mutates them.
package domain

import "github.com/google/uuid"

// Dataset owns the fields, questions, metadata properties and vector settings
// that shape its search index.
type Dataset struct {
	ID                 uuid.UUID
	Name               string
	Fields             []Field
	Questions          []Question
	MetadataProperties []MetadataProperty
	VectorSettings     []VectorSettings
}

// TextFields returns the dataset fields of type text, in definition order.
func (d *Dataset) TextFields() []Field {
	var fields []Field
	for _, f := range d.Fields {
		if f.Type == FieldTypeText {
			fields = append(fields, f)
		}
	}
	return fields
}

// Field is a typed named attribute of every record in a dataset.
type Field struct {
	ID   uuid.UUID
	Name string
	Type FieldType
}

// MetadataProperty is a typed named metadata attribute of a dataset.
type MetadataProperty struct {
	ID   uuid.UUID
	Name string
	Type MetadataPropertyType
}

// Question defines the shape of response and suggestion values.
type Question struct {
	ID   uuid.UUID
	Name string
	Type QuestionType
}

// VectorSettings is a named vector configuration scoped to a dataset.
type VectorSettings struct {
	ID         uuid.UUID
	Name       string
	Dimensions int
}
