package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/ACMCMC/argilla/internal/domain"
	"github.com/ACMCMC/argilla/internal/search/query"
)

func termsQuery(field string, values []string) map[string]any {
	return map[string]any{"terms": map[string]any{field: values}}
}

func rangeQuery(field string, ge, le *float64) map[string]any {
	bounds := map[string]any{}
	if ge != nil {
		bounds["gte"] = *ge
	}
	if le != nil {
		bounds["lte"] = *le
	}
	return map[string]any{"range": map[string]any{field: bounds}}
}

func existsQuery(field string) map[string]any {
	return map[string]any{"exists": map[string]any{"field": field}}
}

func idsQuery(ids []string) map[string]any {
	return map[string]any{"ids": map[string]any{"values": ids}}
}

// boolClauses collects the clauses of a boolean query. The shared builder only
// exposes must/should/must_not uniformly across both backends.
type boolClauses struct {
	must               map[string]any
	mustNot            map[string]any
	should             []map[string]any
	minimumShouldMatch int
}

func boolQuery(clauses boolClauses) (map[string]any, error) {
	boolBody := map[string]any{}
	if clauses.must != nil {
		boolBody["must"] = clauses.must
	}
	if len(clauses.should) > 0 {
		boolBody["should"] = clauses.should
	}
	if clauses.mustNot != nil {
		boolBody["must_not"] = clauses.mustNot
	}
	if len(boolBody) == 0 {
		return nil, fmt.Errorf("%w: cannot build a boolean query without any clause", ErrUsage)
	}
	if clauses.minimumShouldMatch > 0 {
		boolBody["minimum_should_match"] = clauses.minimumShouldMatch
	}
	return map[string]any{"bool": boolBody}, nil
}

// fieldForScope resolves a filter or sort scope to its document field path.
// Unrecognized scopes are a configuration error.
func fieldForScope(scope query.Scope) (string, error) {
	switch s := scope.(type) {
	case query.MetadataScope:
		return fieldForMetadataProperty(s.Property()), nil
	case query.SuggestionScope:
		return fieldForSuggestionProperty(s.Question(), s.Property()), nil
	case query.ResponseScope:
		if s.User() == nil {
			return "", fmt.Errorf("%w: response scope without user cannot be resolved to a single field", ErrConfiguration)
		}
		if s.Property() == "status" {
			return fieldForResponseStatus(*s.User()), nil
		}
		return fieldForResponseValue(*s.User(), s.Question()), nil
	case query.RecordScope:
		return s.Property(), nil
	default:
		return "", fmt.Errorf("%w: cannot resolve search scope %T", ErrConfiguration, scope)
	}
}

// compileFilter translates an abstract filter tree into a backend boolean
// query fragment. liveMapping is the index's current mapping properties tree,
// required only for response-value filters without a user.
func compileFilter(filter query.Filter, liveMapping map[string]any) (map[string]any, error) {
	switch f := filter.(type) {
	case query.And:
		children := make([]map[string]any, 0, len(f.Filters()))
		for _, child := range f.Filters() {
			compiled, err := compileFilter(child, liveMapping)
			if err != nil {
				return nil, err
			}
			children = append(children, compiled)
		}
		// should with minimum_should_match = len(children) is an AND; the
		// shared builder has no uniform "filter" clause across backends.
		return boolQuery(boolClauses{should: children, minimumShouldMatch: len(children)})

	case query.Terms:
		if scope, ok := f.Scope().(query.ResponseScope); ok {
			if scope.IsStatus() {
				return responseStatusFilter(scope.User(), f.Values())
			}
			if scope.IsValueWithoutUser() {
				return responseValueFilterWithoutUser(f, scope, liveMapping)
			}
		}
		field, err := fieldForScope(f.Scope())
		if err != nil {
			return nil, err
		}
		return termsQuery(field, f.Values()), nil

	case query.Range:
		if scope, ok := f.Scope().(query.ResponseScope); ok && scope.IsValueWithoutUser() {
			return responseValueFilterWithoutUser(f, scope, liveMapping)
		}
		field, err := fieldForScope(f.Scope())
		if err != nil {
			return nil, err
		}
		return rangeQuery(field, f.GE(), f.LE()), nil

	default:
		return nil, fmt.Errorf("%w: cannot compile filter %T", ErrConfiguration, filter)
	}
}

// responseStatusFilter compiles a response-status filter. Without a user it
// runs against the status rollup field, since the backend cannot answer "does
// any user's response have status X" from the nested per-user fields alone.
// The pending status matches records where the targeted field does not exist.
func responseStatusFilter(userID *uuid.UUID, statuses []string) (map[string]any, error) {
	field := AllResponsesStatusesField
	if userID != nil {
		field = fieldForResponseStatus(*userID)
	}

	hasPending := false
	stored := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if status == domain.ResponseStatusFilterPending {
			hasPending = true
			continue
		}
		stored = append(stored, status)
	}

	var should []map[string]any
	if hasPending {
		noResponse, err := boolQuery(boolClauses{mustNot: existsQuery(field)})
		if err != nil {
			return nil, err
		}
		should = append(should, noResponse)
	}
	if len(stored) > 0 {
		should = append(should, termsQuery(field, stored))
	}

	return boolQuery(boolClauses{should: should, minimumShouldMatch: 1})
}

// responseValueFilterWithoutUser fans a value filter out over every per-user
// answer path found in the live mapping and ORs them, additionally requiring
// that at least one response exists. Responses are keyed by user, so the live
// mapping is the only place listing which users have ever answered; this is a
// documented compromise of that mapping layout.
func responseValueFilterWithoutUser(
	filter query.Filter, scope query.ResponseScope, liveMapping map[string]any,
) (map[string]any, error) {
	fields := responseValueFields(liveMapping, scope.Question())

	should := make([]map[string]any, 0, len(fields))
	for _, field := range fields {
		compiled, err := filterForField(filter, field)
		if err != nil {
			return nil, err
		}
		should = append(should, compiled)
	}

	return boolQuery(boolClauses{
		must:               existsQuery(AllResponsesStatusesField),
		should:             should,
		minimumShouldMatch: 1,
	})
}

// responseValueFields lists the per-user answer paths for a question from the
// live mapping properties tree, sorted for deterministic queries.
func responseValueFields(liveMapping map[string]any, question string) []string {
	responses, _ := liveMapping["responses"].(map[string]any)
	users, _ := responses["properties"].(map[string]any)

	var fields []string
	for userID, raw := range users {
		userMapping, _ := raw.(map[string]any)
		userProperties, _ := userMapping["properties"].(map[string]any)
		values, _ := userProperties["values"].(map[string]any)
		valueProperties, _ := values["properties"].(map[string]any)
		if _, ok := valueProperties[question]; ok {
			fields = append(fields, "responses."+userID+".values."+question)
		}
	}
	sort.Strings(fields)
	return fields
}

// filterForField compiles a terms or range filter against an explicit field
// path, bypassing scope resolution.
func filterForField(filter query.Filter, field string) (map[string]any, error) {
	switch f := filter.(type) {
	case query.Terms:
		return termsQuery(field, f.Values()), nil
	case query.Range:
		return rangeQuery(field, f.GE(), f.LE()), nil
	default:
		return nil, fmt.Errorf("%w: cannot compile filter %T", ErrConfiguration, filter)
	}
}

// compileSort serializes a sort specification as an ordered field:direction
// list using the same scope resolution as filtering.
func compileSort(orders []query.Order) (string, error) {
	parts := make([]string, 0, len(orders))
	for _, order := range orders {
		field, err := fieldForScope(order.Scope())
		if err != nil {
			return "", err
		}
		parts = append(parts, field+":"+string(order.Direction()))
	}
	return strings.Join(parts, ","), nil
}

// textQuery builds the full-text part of a search. Without query text it
// matches all documents; without a field it spans every text field.
func textQuery(dataset *domain.Dataset, text *query.Text) map[string]any {
	if text == nil {
		return map[string]any{"match_all": map[string]any{}}
	}

	if text.Field() != "" {
		return map[string]any{
			"match": map[string]any{
				fieldForRecordField(text.Field()): map[string]any{
					"query":    text.Q(),
					"operator": "and",
				},
			},
		}
	}

	fields := dataset.TextFields()
	names := make([]string, 0, len(fields))
	for _, field := range fields {
		names = append(names, fieldForRecordField(field.Name))
	}
	return map[string]any{
		"multi_match": map[string]any{
			"query":    text.Q(),
			"type":     "cross_fields",
			"fields":   names,
			"operator": "and",
		},
	}
}
