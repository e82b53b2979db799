package domain

// FieldType classifies a dataset field.
type FieldType string

const (
	// FieldTypeText is a free-text field.
	FieldTypeText FieldType = "text"
	// FieldTypeImage is an image URL field.
	FieldTypeImage FieldType = "image"
	// FieldTypeChat is a chat transcript field.
	FieldTypeChat FieldType = "chat"
	// FieldTypeCustom is a custom rendered field.
	FieldTypeCustom FieldType = "custom"
)

// MetadataPropertyType classifies a metadata property.
type MetadataPropertyType string

const (
	// MetadataPropertyTypeTerms holds one or more categorical values.
	MetadataPropertyTypeTerms MetadataPropertyType = "terms"
	// MetadataPropertyTypeInteger holds an integer value.
	MetadataPropertyTypeInteger MetadataPropertyType = "integer"
	// MetadataPropertyTypeFloat holds a floating point value.
	MetadataPropertyTypeFloat MetadataPropertyType = "float"
)

// QuestionType classifies an annotation question.
type QuestionType string

const (
	// QuestionTypeText is a free-text answer.
	QuestionTypeText QuestionType = "text"
	// QuestionTypeRating is a numeric rating answer.
	QuestionTypeRating QuestionType = "rating"
	// QuestionTypeLabelSelection is a single-label answer.
	QuestionTypeLabelSelection QuestionType = "label_selection"
	// QuestionTypeMultiLabelSelection is a multi-label answer.
	QuestionTypeMultiLabelSelection QuestionType = "multi_label_selection"
	// QuestionTypeRanking is a ranked-options answer.
	QuestionTypeRanking QuestionType = "ranking"
	// QuestionTypeSpan is a span-annotation answer.
	QuestionTypeSpan QuestionType = "span"
)

// RecordStatus is the annotation progress status of a record.
type RecordStatus string

const (
	// RecordStatusPending means the record still needs responses.
	RecordStatusPending RecordStatus = "pending"
	// RecordStatusCompleted means the record has enough responses.
	RecordStatusCompleted RecordStatus = "completed"
)

// ResponseStatus is the lifecycle status of a user response.
type ResponseStatus string

const (
	// ResponseStatusDraft is a saved but unsubmitted response.
	ResponseStatusDraft ResponseStatus = "draft"
	// ResponseStatusSubmitted is a submitted response.
	ResponseStatusSubmitted ResponseStatus = "submitted"
	// ResponseStatusDiscarded is a discarded response.
	ResponseStatusDiscarded ResponseStatus = "discarded"
)

// ResponseStatusFilterPending is a query-only status matching records for
// which a user has not answered at all. No stored response ever carries it.
const ResponseStatusFilterPending = "pending"

// SimilarityOrder selects nearest-first or farthest-first vector retrieval.
type SimilarityOrder string

const (
	// SimilarityOrderMostSimilar ranks nearest vectors first.
	SimilarityOrderMostSimilar SimilarityOrder = "most_similar"
	// SimilarityOrderLeastSimilar ranks farthest vectors first.
	SimilarityOrderLeastSimilar SimilarityOrder = "least_similar"
)
