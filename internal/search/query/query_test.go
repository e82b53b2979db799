package query

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewMetadataScope_RequiresProperty(t *testing.T) {
	_, err := NewMetadataScope("")
	if err == nil {
		t.Fatal("expected error for empty property")
	}

	scope, err := NewMetadataScope("source")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Property() != "source" {
		t.Errorf("expected property 'source', got %q", scope.Property())
	}
}

func TestNewRecordScope_RequiresProperty(t *testing.T) {
	_, err := NewRecordScope("")
	if err == nil {
		t.Fatal("expected error for empty property")
	}
}

func TestNewResponseStatusScope(t *testing.T) {
	anyUser := NewResponseStatusScope(nil)
	if !anyUser.IsStatus() {
		t.Error("expected status scope without question to report IsStatus")
	}
	if anyUser.User() != nil {
		t.Error("expected nil user")
	}

	userID := uuid.New()
	oneUser := NewResponseStatusScope(&userID)
	if !oneUser.IsStatus() {
		t.Error("expected IsStatus with a user too")
	}
	if oneUser.User() == nil || *oneUser.User() != userID {
		t.Error("expected the given user")
	}
}

func TestNewResponseValueScope(t *testing.T) {
	if _, err := NewResponseValueScope(nil, ""); err == nil {
		t.Fatal("expected error for empty question")
	}

	scope, err := NewResponseValueScope(nil, "sentiment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !scope.IsValueWithoutUser() {
		t.Error("expected IsValueWithoutUser when no user is given")
	}
	if scope.IsStatus() {
		t.Error("value scope must not report IsStatus")
	}

	userID := uuid.New()
	withUser, err := NewResponseValueScope(&userID, "sentiment")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withUser.IsValueWithoutUser() {
		t.Error("expected IsValueWithoutUser=false when a user is given")
	}
}

func TestNewSuggestionScope(t *testing.T) {
	if _, err := NewSuggestionScope("", "score"); err == nil {
		t.Fatal("expected error for empty question")
	}

	scope, err := NewSuggestionScope("sentiment", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if scope.Property() != "value" {
		t.Errorf("expected property to default to 'value', got %q", scope.Property())
	}
}

func TestNewAnd_RequiresChildren(t *testing.T) {
	if _, err := NewAnd(); err == nil {
		t.Fatal("expected error for empty AND")
	}
}

func TestNewTerms_Validation(t *testing.T) {
	scope, _ := NewMetadataScope("source")

	if _, err := NewTerms(nil, "a"); err == nil {
		t.Fatal("expected error for nil scope")
	}
	if _, err := NewTerms(scope); err == nil {
		t.Fatal("expected error for no values")
	}

	f, err := NewTerms(scope, "a", "b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.Values()) != 2 {
		t.Errorf("expected 2 values, got %d", len(f.Values()))
	}
}

func TestNewRange_RequiresABound(t *testing.T) {
	scope, _ := NewMetadataScope("score")

	_, err := NewRange(scope, nil, nil)
	if err == nil {
		t.Fatal("expected error for unbounded range")
	}
	if !strings.Contains(err.Error(), "bound") {
		t.Errorf("expected bound error, got %v", err)
	}

	ge := 0.5
	f, err := NewRange(scope, &ge, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.GE() == nil || *f.GE() != 0.5 {
		t.Error("expected lower bound 0.5")
	}
	if f.LE() != nil {
		t.Error("expected no upper bound")
	}
}

func TestNewOrder_RejectsUnknownDirection(t *testing.T) {
	scope, _ := NewRecordScope("inserted_at")

	if _, err := NewOrder(nil, Asc); err == nil {
		t.Fatal("expected error for nil scope")
	}
	if _, err := NewOrder(scope, Direction("sideways")); err == nil {
		t.Fatal("expected error for unknown direction")
	}

	o, err := NewOrder(scope, Desc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Direction() != Desc {
		t.Errorf("expected desc, got %q", o.Direction())
	}
}

func TestNewText_Validation(t *testing.T) {
	if _, err := NewText(""); err == nil {
		t.Fatal("expected error for empty query text")
	}
	if _, err := NewFieldText("hello", ""); err == nil {
		t.Fatal("expected error for empty field")
	}

	text, err := NewFieldText("hello", "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text.Q() != "hello" || text.Field() != "prompt" {
		t.Errorf("unexpected text query: %q field %q", text.Q(), text.Field())
	}
}
