package http

import (
	"context"

	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// withSpan runs fn under a child span and finishes it with fn's error.
func withSpan(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	span, ctx := tracer.StartSpanFromContext(ctx, name)
	err := fn(ctx)
	span.Finish(tracer.WithError(err))
	return err
}
