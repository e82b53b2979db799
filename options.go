package argilla

import (
	"go.uber.org/zap"

	"github.com/ACMCMC/argilla/internal/search"
)

// Option configures the Client.
type Option func(*clientConfig)

type clientConfig struct {
	driver    string // "elasticsearch" or "opensearch"
	addresses []string
	username  string
	password  string
	insecure  bool

	index        search.Config
	instrumented bool

	logger *zap.Logger
}

// WithElasticsearch connects the client to an Elasticsearch cluster.
// This is the default driver if no driver option is provided.
func WithElasticsearch(addresses ...string) Option {
	return func(c *clientConfig) {
		c.driver = "elasticsearch"
		c.addresses = addresses
	}
}

// WithOpenSearch connects the client to an OpenSearch cluster.
func WithOpenSearch(addresses ...string) Option {
	return func(c *clientConfig) {
		c.driver = "opensearch"
		c.addresses = addresses
	}
}

// WithBasicAuth sets the backend credentials.
func WithBasicAuth(username, password string) Option {
	return func(c *clientConfig) {
		c.username = username
		c.password = password
	}
}

// WithInsecureTLS skips TLS certificate verification. Intended for local
// clusters with self-signed certificates.
func WithInsecureTLS() Option {
	return func(c *clientConfig) {
		c.insecure = true
	}
}

// WithIndexConfig overrides the index tuning knobs applied to new indexes.
func WithIndexConfig(cfg search.Config) Option {
	return func(c *clientConfig) {
		c.index = cfg
	}
}

// WithInstrumentation wraps every backend call with request metrics and debug
// logging. The metrics must be registered once via metrics.Register.
func WithInstrumentation() Option {
	return func(c *clientConfig) {
		c.instrumented = true
	}
}

// WithLogger sets the client logger. Logging is disabled by default.
func WithLogger(logger *zap.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}
