package yang

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jacoelho/yang/internal/stmt"
	"github.com/jacoelho/yang/internal/stmt/rfc6020"
)

// FactoryOptions configures a Factory. The zero value is valid.
type FactoryOptions struct {
	logger         *zap.Logger
	fetchTimeout   time.Duration
	maxFetches     int
	singleFlight   bool
	supports       []StatementSupport
	extensions     []extensionSupport
	featureDefault FeaturePredicate
}

type extensionSupport struct {
	module  string
	name    string
	support StatementSupport
}

type resolvedFactoryOptions struct {
	logger       *zap.Logger
	fetchTimeout time.Duration
	maxFetches   int
	singleFlight bool
	registry     *stmt.Registry
	features     FeaturePredicate
}

// NewFactoryOptions returns a default, valid options value.
func NewFactoryOptions() FactoryOptions {
	return FactoryOptions{}
}

// Validate validates option values.
func (o FactoryOptions) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithLogger sets the logger (nil disables logging).
func (o FactoryOptions) WithLogger(logger *zap.Logger) FactoryOptions {
	o.logger = logger
	return o
}

// WithFetchTimeout bounds the fetch stage of each call (0 means no bound).
func (o FactoryOptions) WithFetchTimeout(d time.Duration) FactoryOptions {
	o.fetchTimeout = d
	return o
}

// WithMaxConcurrentFetches limits in-flight repository fetches per call (0
// means unlimited).
func (o FactoryOptions) WithMaxConcurrentFetches(n int) FactoryOptions {
	o.maxFetches = n
	return o
}

// WithSingleFlight makes concurrent calls for the same key share one build.
func (o FactoryOptions) WithSingleFlight(value bool) FactoryOptions {
	o.singleFlight = value
	return o
}

// WithStatementSupport registers s for its keyword, replacing the builtin
// support if there is one.
func (o FactoryOptions) WithStatementSupport(s StatementSupport) FactoryOptions {
	o.supports = append(append([]StatementSupport(nil), o.supports...), s)
	return o
}

// WithExtensionSupport registers s for the extension name defined by module.
func (o FactoryOptions) WithExtensionSupport(module, name string, s StatementSupport) FactoryOptions {
	o.extensions = append(append([]extensionSupport(nil), o.extensions...), extensionSupport{
		module: module, name: name, support: s,
	})
	return o
}

// WithDefaultFeatures sets the feature predicate used when a call passes nil.
func (o FactoryOptions) WithDefaultFeatures(p FeaturePredicate) FactoryOptions {
	o.featureDefault = p
	return o
}

func (o FactoryOptions) withDefaults() (resolvedFactoryOptions, error) {
	if o.fetchTimeout < 0 {
		return resolvedFactoryOptions{}, fmt.Errorf("fetch timeout must not be negative: %s", o.fetchTimeout)
	}
	if o.maxFetches < 0 {
		return resolvedFactoryOptions{}, fmt.Errorf("max concurrent fetches must not be negative: %d", o.maxFetches)
	}
	registry := rfc6020.NewRegistry()
	for _, s := range o.supports {
		if s == nil || s.Keyword() == "" {
			return resolvedFactoryOptions{}, errors.New("statement support must name a keyword")
		}
		registry.Register(s)
	}
	for _, e := range o.extensions {
		if e.support == nil || e.module == "" || e.name == "" {
			return resolvedFactoryOptions{}, errors.New("extension support needs a module, a name and a support")
		}
		registry.RegisterExtension(e.module, e.name, e.support)
	}
	logger := o.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return resolvedFactoryOptions{
		logger:       logger,
		fetchTimeout: o.fetchTimeout,
		maxFetches:   o.maxFetches,
		singleFlight: o.singleFlight,
		registry:     registry,
		features:     o.featureDefault,
	}, nil
}
