package incremental

import (
	"errors"
)

// Option configures a Log.
type Option func(*config) error

type config struct {
	grammar Grammar
	logger  Logger
}

// WithGrammar sets the grammar used to parse path expressions passed to the
// queueing verbs. The default is KeyedGrammar.
func WithGrammar(g Grammar) Option {
	return func(cfg *config) error {
		if g == nil {
			return errors.New("incremental: grammar cannot be nil")
		}
		cfg.grammar = g
		return nil
	}
}

// WithLogger sets a structured logger. By default nothing is logged.
func WithLogger(l Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		grammar: KeyedGrammar{},
		logger:  NopLogger{},
	}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
