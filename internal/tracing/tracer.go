package tracing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openzipkin/zipkin-go"
	"github.com/openzipkin/zipkin-go/model"
	"github.com/openzipkin/zipkin-go/propagation/b3"
	"github.com/openzipkin/zipkin-go/reporter"
	reporterhttp "github.com/openzipkin/zipkin-go/reporter/http"
)

type parentKey struct{}

// Tracer wraps a zipkin tracer and owns its reporter.
type Tracer struct {
	tracer *zipkin.Tracer
	rep    reporter.Reporter
}

// New builds a Tracer reporting to zipkinURL (base URL, without the
// /api/v2/spans suffix). An empty URL yields a noop reporter so the service
// runs fine without a collector.
func New(serviceName, zipkinURL string) (*Tracer, error) {
	rep := reporter.NewNoopReporter()
	if zipkinURL != "" {
		rep = reporterhttp.NewReporter(strings.TrimRight(zipkinURL, "/") + "/api/v2/spans")
	}
	return NewWithReporter(serviceName, rep)
}

// NewWithReporter builds a Tracer on an explicit reporter. Tests use this
// with the recorder reporter.
func NewWithReporter(serviceName string, rep reporter.Reporter) (*Tracer, error) {
	endpoint, err := zipkin.NewEndpoint(serviceName, "")
	if err != nil {
		return nil, fmt.Errorf("zipkin endpoint: %w", err)
	}
	zt, err := zipkin.NewTracer(rep, zipkin.WithLocalEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("zipkin tracer: %w", err)
	}
	return &Tracer{tracer: zt, rep: rep}, nil
}

// Close flushes and closes the underlying reporter.
func (t *Tracer) Close() error {
	return t.rep.Close()
}

// Scoped runs fn inside a server span named after the operation. The span is
// annotated on entry and exit and finished on every path, including error
// returns, so no span is left open. fn receives a context carrying the span;
// SpanID reads it back.
func (t *Tracer) Scoped(ctx context.Context, operation string, fn func(context.Context) error) error {
	opts := []zipkin.SpanOption{zipkin.Kind(model.Server)}
	if parent, ok := ctx.Value(parentKey{}).(model.SpanContext); ok {
		opts = append(opts, zipkin.Parent(parent))
	}
	span := t.tracer.StartSpan(operation, opts...)
	span.Annotate(time.Now(), "server.receive")
	defer func() {
		span.Annotate(time.Now(), "server.send")
		span.Finish()
	}()
	return fn(zipkin.NewContext(ctx, span))
}

// Middleware extracts B3 headers from the request, if any, so operation
// spans join the caller's trace.
func (t *Tracer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sc, err := b3.ExtractHTTP(c.Request)(); err == nil && sc != nil {
			c.Request = c.Request.WithContext(ContextWithParent(c.Request.Context(), *sc))
		}
		c.Next()
	}
}

// ContextWithParent stores an extracted span context as the parent for the
// next Scoped call.
func ContextWithParent(ctx context.Context, sc model.SpanContext) context.Context {
	return context.WithValue(ctx, parentKey{}, sc)
}

// SpanID returns the hex id of the span active in ctx, or "" outside a scope.
func SpanID(ctx context.Context) string {
	span := zipkin.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	return span.Context().ID.String()
}
