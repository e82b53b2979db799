// Package query holds the backend-agnostic filter, sort and text-query value
// objects accepted by the search engine. Callers build these instead of raw
// backend query DSL.
package query

import (
	"fmt"

	"github.com/google/uuid"
)

// Scope identifies which document sub-area a filter or sort applies to.
type Scope interface {
	isScope()
}

// MetadataScope targets one metadata property of the record.
type MetadataScope struct {
	property string
}

// NewMetadataScope creates a scope over a metadata property.
func NewMetadataScope(property string) (MetadataScope, error) {
	if property == "" {
		return MetadataScope{}, fmt.Errorf("metadata property name is required")
	}
	return MetadataScope{property: property}, nil
}

// Property returns the metadata property name.
func (s MetadataScope) Property() string { return s.property }

func (MetadataScope) isScope() {}

// RecordScope targets a top-level record property such as id, status,
// inserted_at or updated_at.
type RecordScope struct {
	property string
}

// NewRecordScope creates a scope over a top-level record property.
func NewRecordScope(property string) (RecordScope, error) {
	if property == "" {
		return RecordScope{}, fmt.Errorf("record property name is required")
	}
	return RecordScope{property: property}, nil
}

// Property returns the record property name.
func (s RecordScope) Property() string { return s.property }

func (RecordScope) isScope() {}

// ResponseScope targets the responses of a record, optionally narrowed to one
// user and/or one question. Property is "status" or "value".
type ResponseScope struct {
	user     *uuid.UUID
	question string
	property string
}

// NewResponseStatusScope creates a scope over response statuses. A nil user
// means any user's response status.
func NewResponseStatusScope(user *uuid.UUID) ResponseScope {
	return ResponseScope{user: user, property: "status"}
}

// NewResponseValueScope creates a scope over answer values for one question.
// A nil user means any user's answer.
func NewResponseValueScope(user *uuid.UUID, question string) (ResponseScope, error) {
	if question == "" {
		return ResponseScope{}, fmt.Errorf("question name is required for a response value scope")
	}
	return ResponseScope{user: user, question: question, property: "value"}, nil
}

// User returns the targeted user, or nil for any user.
func (s ResponseScope) User() *uuid.UUID { return s.user }

// Question returns the targeted question name, empty for status scopes.
func (s ResponseScope) Question() string { return s.question }

// Property returns the targeted response property ("status" or "value").
func (s ResponseScope) Property() string { return s.property }

// IsStatus reports whether the scope targets response statuses without a
// question.
func (s ResponseScope) IsStatus() bool {
	return s.property == "status" && s.question == ""
}

// IsValueWithoutUser reports whether the scope targets answer values for a
// question without naming a user.
func (s ResponseScope) IsValueWithoutUser() bool {
	return s.user == nil && s.question != "" && (s.property == "" || s.property == "value")
}

func (ResponseScope) isScope() {}

// SuggestionScope targets one property of the suggestion for one question.
type SuggestionScope struct {
	question string
	property string
}

// NewSuggestionScope creates a scope over a suggestion property. An empty
// property defaults to "value".
func NewSuggestionScope(question, property string) (SuggestionScope, error) {
	if question == "" {
		return SuggestionScope{}, fmt.Errorf("question name is required for a suggestion scope")
	}
	if property == "" {
		property = "value"
	}
	return SuggestionScope{question: question, property: property}, nil
}

// Question returns the question name.
func (s SuggestionScope) Question() string { return s.question }

// Property returns the suggestion property (value, score, agent or type).
func (s SuggestionScope) Property() string { return s.property }

func (SuggestionScope) isScope() {}

// Filter is a scoped terms or range condition, or an AND-combination of
// filters.
type Filter interface {
	isFilter()
}

// And matches documents satisfying every child filter.
type And struct {
	filters []Filter
}

// NewAnd combines filters so that all of them must match.
func NewAnd(filters ...Filter) (And, error) {
	if len(filters) == 0 {
		return And{}, fmt.Errorf("at least one filter is required")
	}
	return And{filters: filters}, nil
}

// Filters returns the child filters.
func (f And) Filters() []Filter { return f.filters }

func (And) isFilter() {}

// Terms matches documents whose scoped field holds any of the given values.
type Terms struct {
	scope  Scope
	values []string
}

// NewTerms creates a terms-membership filter.
func NewTerms(scope Scope, values ...string) (Terms, error) {
	if scope == nil {
		return Terms{}, fmt.Errorf("filter scope is required")
	}
	if len(values) == 0 {
		return Terms{}, fmt.Errorf("at least one term value is required")
	}
	return Terms{scope: scope, values: values}, nil
}

// Scope returns the filter scope.
func (f Terms) Scope() Scope { return f.scope }

// Values returns the accepted values.
func (f Terms) Values() []string { return f.values }

func (Terms) isFilter() {}

// Range matches documents whose scoped numeric field falls inside the bounds.
// A nil bound leaves that side unbounded.
type Range struct {
	scope Scope
	ge    *float64
	le    *float64
}

// NewRange creates a numeric range filter. At least one bound is required.
func NewRange(scope Scope, ge, le *float64) (Range, error) {
	if scope == nil {
		return Range{}, fmt.Errorf("filter scope is required")
	}
	if ge == nil && le == nil {
		return Range{}, fmt.Errorf("at least one range bound is required")
	}
	return Range{scope: scope, ge: ge, le: le}, nil
}

// Scope returns the filter scope.
func (f Range) Scope() Scope { return f.scope }

// GE returns the inclusive lower bound.
func (f Range) GE() *float64 { return f.ge }

// LE returns the inclusive upper bound.
func (f Range) LE() *float64 { return f.le }

func (Range) isFilter() {}

// Direction is a sort direction.
type Direction string

const (
	// Asc sorts ascending.
	Asc Direction = "asc"
	// Desc sorts descending.
	Desc Direction = "desc"
)

// Order pairs a scope with a sort direction.
type Order struct {
	scope     Scope
	direction Direction
}

// NewOrder creates a sort order for a scope.
func NewOrder(scope Scope, direction Direction) (Order, error) {
	if scope == nil {
		return Order{}, fmt.Errorf("sort scope is required")
	}
	switch direction {
	case Asc, Desc:
	default:
		return Order{}, fmt.Errorf("unknown sort direction %q", direction)
	}
	return Order{scope: scope, direction: direction}, nil
}

// Scope returns the sorted scope.
func (o Order) Scope() Scope { return o.scope }

// Direction returns the sort direction.
func (o Order) Direction() Direction { return o.direction }

// Text is a full-text query, optionally restricted to a single field.
type Text struct {
	q     string
	field string
}

// NewText creates a text query spanning all text fields.
func NewText(q string) (Text, error) {
	if q == "" {
		return Text{}, fmt.Errorf("query text is required")
	}
	return Text{q: q}, nil
}

// NewFieldText creates a text query restricted to one field.
func NewFieldText(q, field string) (Text, error) {
	if q == "" {
		return Text{}, fmt.Errorf("query text is required")
	}
	if field == "" {
		return Text{}, fmt.Errorf("field name is required")
	}
	return Text{q: q, field: field}, nil
}

// Q returns the query text.
func (t Text) Q() string { return t.q }

// Field returns the restricted field name, empty when spanning all fields.
func (t Text) Field() string { return t.field }
