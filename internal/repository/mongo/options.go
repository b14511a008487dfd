package mongo

import "go.uber.org/zap"

type options struct {
	collection   string
	autoValidate bool
	log          *zap.Logger
}

// Option configures a DocumentRepository
type Option func(*options)

// WithCollection binds the repository to name instead of the pluralized
// entity type name
func WithCollection(name string) Option {
	return func(o *options) {
		o.collection = name
	}
}

// WithAutoValidate runs struct validation on every Save
func WithAutoValidate(enabled bool) Option {
	return func(o *options) {
		o.autoValidate = enabled
	}
}

// WithLogger sets the base logger. Collection fields are added to it.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}
