package instrument

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/bymeisam/use/pkg/events"
)

// Default tracer name for event delivery spans.
const defaultTracerName = "use"

// TraceConfig configures event tracing.
type TraceConfig struct {
	// TracerName is the name of the tracer (default: "use").
	TracerName string

	// Filter determines which events to trace.
	// Return true to trace the event, false to skip.
	// If nil, all events are traced.
	Filter func(e events.Event) bool

	// AttributeExtractor extracts custom attributes from the event.
	// Called for each traced event.
	AttributeExtractor func(e events.Event) []attribute.KeyValue

	// tracer is the resolved tracer instance.
	tracer trace.Tracer
}

// TraceOption configures event tracing.
type TraceOption func(*TraceConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TraceOption {
	return func(c *TraceConfig) {
		c.TracerName = name
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(e events.Event) bool) TraceOption {
	return func(c *TraceConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(e events.Event) []attribute.KeyValue) TraceOption {
	return func(c *TraceConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultTraceConfig() TraceConfig {
	return TraceConfig{
		TracerName: defaultTracerName,
	}
}

// Trace wraps src so that every handler invocation runs inside an
// OpenTelemetry span named after the event. Handler panics are recorded on
// the span and re-raised.
//
// The tracer comes from the global tracer provider; configure it in your
// main() before delivering events:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func Trace(src events.Source, opts ...TraceOption) events.Source {
	config := defaultTraceConfig()
	for _, opt := range opts {
		opt(&config)
	}

	config.tracer = otel.Tracer(config.TracerName)

	return &tracedSource{config: config, src: src}
}

type tracedSource struct {
	config TraceConfig
	src    events.Source
}

func (s *tracedSource) Subscribe(name string, h events.Handler) func() {
	return s.src.Subscribe(name, func(e events.Event) {
		if s.config.Filter != nil && !s.config.Filter(e) {
			h(e)
			return
		}
		s.traced(e, h)
	})
}

func (s *tracedSource) traced(e events.Event, h events.Handler) {
	attrs := []attribute.KeyValue{
		attribute.String("event.name", e.Name),
		attribute.String("event.target", e.Target),
		attribute.Int("event.x", e.X),
		attribute.Int("event.y", e.Y),
	}
	if len(e.Path) > 0 {
		attrs = append(attrs, attribute.String("event.path", strings.Join(e.Path, "/")))
	}
	if s.config.AttributeExtractor != nil {
		attrs = append(attrs, s.config.AttributeExtractor(e)...)
	}

	startOpts := []trace.SpanStartOption{
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	}
	if !e.Time.IsZero() {
		startOpts = append(startOpts, trace.WithTimestamp(e.Time))
	}

	_, span := s.config.tracer.Start(
		context.Background(),
		fmt.Sprintf("event.%s", e.Name),
		startOpts...,
	)
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("event handler panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			panic(r)
		}
		span.SetStatus(codes.Ok, "")
	}()

	h(e)
}
