// Package argilla is the embeddable entry point of the dataset search layer.
// A Client wires a search backend (Elasticsearch or OpenSearch) to the engine
// that maps datasets and records onto backend indexes.
package argilla

import (
	"context"
	"errors"
	"fmt"

	"github.com/ACMCMC/argilla/internal/search"
	"github.com/ACMCMC/argilla/internal/search/elastic"
	"github.com/ACMCMC/argilla/internal/search/opensearch"
)

// Client owns a configured search engine.
type Client struct {
	engine *search.Engine
}

// New creates a Client over the configured backend.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: "elasticsearch"}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addresses) == 0 {
		return nil, errors.New("argilla: backend address required (use WithElasticsearch or WithOpenSearch)")
	}

	backend, err := createBackend(cfg)
	if err != nil {
		return nil, err
	}
	if cfg.instrumented {
		backend = search.NewInstrumentedBackend(backend, cfg.logger)
	}

	return &Client{engine: search.New(backend, cfg.index, cfg.logger)}, nil
}

func createBackend(cfg *clientConfig) (search.Backend, error) {
	switch cfg.driver {
	case "elasticsearch":
		b, err := elastic.New(elastic.Config{
			Addresses:          cfg.addresses,
			Username:           cfg.username,
			Password:           cfg.password,
			InsecureSkipVerify: cfg.insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("argilla: create elasticsearch backend: %w", err)
		}
		return b, nil
	case "opensearch":
		b, err := opensearch.New(opensearch.Config{
			Addresses:          cfg.addresses,
			Username:           cfg.username,
			Password:           cfg.password,
			InsecureSkipVerify: cfg.insecure,
		})
		if err != nil {
			return nil, fmt.Errorf("argilla: create opensearch backend: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("argilla: unknown driver %q", cfg.driver)
	}
}

// Engine returns the search façade for dataset and record operations.
func (c *Client) Engine() *search.Engine {
	return c.engine
}

// Ping checks backend connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
