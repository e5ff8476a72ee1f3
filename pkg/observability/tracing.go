package observability

import (
	"context"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer wraps X-Ray subsegment tracing around store and external calls.
// A nil *Tracer is valid and traces nothing, so callers never need to branch
// on whether tracing is enabled.
type Tracer struct {
	serviceName string
}

// NewTracer creates a tracer instance.
func NewTracer(serviceName string) *Tracer {
	return &Tracer{serviceName: serviceName}
}

// Capture wraps fn in a subsegment named after the operation.
func (t *Tracer) Capture(ctx context.Context, name string, fn func(context.Context) error) error {
	if t == nil {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, name)
	if seg == nil {
		return fn(ctx)
	}

	err := fn(ctx)
	seg.Close(err)
	return err
}

// AddAnnotation adds an indexed annotation to the current segment.
func (t *Tracer) AddAnnotation(ctx context.Context, key, value string) {
	if t == nil {
		return
	}
	if seg := xray.GetSegment(ctx); seg != nil {
		seg.AddAnnotation(key, value)
	}
}
