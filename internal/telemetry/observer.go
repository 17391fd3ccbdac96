// Package telemetry records tool invocations as OpenTelemetry spans and metrics.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies this module's tracer and meter.
const InstrumentationName = "github.com/bobmcallan/managed-db-mcp"

// Observer records one span, one counter increment and one latency sample per tool call.
// A nil *Observer is valid and records nothing.
type Observer struct {
	tracer      trace.Tracer
	invocations metric.Int64Counter
	latency     metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	invocations, err := meter.Int64Counter(
		"managed_db.tool.invocations",
		metric.WithDescription("Number of MCP tool invocations"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"managed_db.tool.latency",
		metric.WithDescription("Tool invocation latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:      tracer,
		invocations: invocations,
		latency:     latency,
	}, nil
}

// NewGlobalObserver creates an observer from the process-wide OpenTelemetry providers.
// Without an installed SDK these are no-ops.
func NewGlobalObserver() (*Observer, error) {
	return NewObserver(
		otel.GetMeterProvider().Meter(InstrumentationName),
		otel.GetTracerProvider().Tracer(InstrumentationName),
	)
}

// Invocation tracks a single in-flight tool call.
type Invocation struct {
	observer *Observer
	ctx      context.Context
	tool     string
	span     trace.Span
	start    time.Time
}

// Start begins tracking a tool call. The returned context carries the span.
func (o *Observer) Start(ctx context.Context, tool string) (context.Context, *Invocation) {
	if o == nil {
		return ctx, nil
	}
	inv := &Invocation{observer: o, tool: tool, start: time.Now()}
	if o.tracer != nil {
		ctx, inv.span = o.tracer.Start(ctx, "tool.call",
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("tool_name", tool)),
		)
	}
	inv.ctx = ctx
	return ctx, inv
}

// End records the outcome. statusCode is the control-plane HTTP status, or 0 if none was received.
func (inv *Invocation) End(success bool, statusCode int) {
	if inv == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("tool_name", inv.tool),
		attribute.Bool("success", success),
	}
	if statusCode != 0 {
		attrs = append(attrs, attribute.Int("http.status_code", statusCode))
	}

	options := metric.WithAttributes(attrs...)
	inv.observer.invocations.Add(inv.ctx, 1, options)
	inv.observer.latency.Record(inv.ctx, time.Since(inv.start).Seconds(), options)

	if inv.span == nil {
		return
	}
	inv.span.SetAttributes(attrs...)
	if success {
		inv.span.SetStatus(codes.Ok, "")
	} else {
		inv.span.SetStatus(codes.Error, "tool call failed")
	}
	inv.span.End()
}
