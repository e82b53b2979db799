package argilla

import (
	"strings"
	"testing"

	"github.com/ACMCMC/argilla/internal/search"
)

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without a backend address")
	}
	if !strings.Contains(err.Error(), "address required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNew_Elasticsearch(t *testing.T) {
	client, err := New(WithElasticsearch("http://localhost:9200"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Engine() == nil {
		t.Fatal("expected a wired engine")
	}
}

func TestNew_OpenSearch(t *testing.T) {
	client, err := New(
		WithOpenSearch("http://localhost:9200"),
		WithBasicAuth("admin", "admin"),
		WithInsecureTLS(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Engine() == nil {
		t.Fatal("expected a wired engine")
	}
}

func TestNew_WithOptions(t *testing.T) {
	client, err := New(
		WithElasticsearch("http://localhost:9200"),
		WithIndexConfig(search.Config{NumberOfShards: 3}),
		WithInstrumentation(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if client.Engine() == nil {
		t.Fatal("expected a wired engine")
	}
}
