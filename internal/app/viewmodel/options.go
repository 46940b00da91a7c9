package viewmodel

import (
	"time"

	"github.com/okian/tassibets/pkg/logger"
)

type options[T any] struct {
	logger      logger.Logger
	pullTimeout time.Duration
	stopTimeout time.Duration
	onUpdate    func(T)
}

// Option applies a configuration option to a View.
type Option[T any] func(*options[T])

// WithLogger sets a custom logger for the view.
func WithLogger[T any](l logger.Logger) Option[T] {
	return func(o *options[T]) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPullTimeout bounds each full pull.
func WithPullTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		if d > 0 {
			o.pullTimeout = d
		}
	}
}

// WithStopTimeout bounds how long Deactivate waits for the refresh loop.
func WithStopTimeout[T any](d time.Duration) Option[T] {
	return func(o *options[T]) {
		if d > 0 {
			o.stopTimeout = d
		}
	}
}

// WithOnUpdate registers fn to run on the refresh goroutine after every
// successful refresh. fn must not call back into the view's Deactivate.
func WithOnUpdate[T any](fn func(T)) Option[T] {
	return func(o *options[T]) {
		o.onUpdate = fn
	}
}
