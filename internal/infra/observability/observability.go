// Package observability provides operation tracing and Prometheus metrics
// for the journey engine.
//
// This provides:
//   - Trace spans for every engine operation (create → show up → complete → withdraw)
//   - Trace ID propagation through context (request ID from the HTTP layer)
//   - Prometheus metrics for journeys, settlements, fees and the ledger
package observability

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ═══════════════════════════════════════════════════════════════════════════
// Trace Spans: in-memory span ring buffer
// ═══════════════════════════════════════════════════════════════════════════

// Span represents one engine operation.
type Span struct {
	TraceID   string            `json:"trace_id"`
	SpanID    string            `json:"span_id"`
	ParentID  string            `json:"parent_id,omitempty"`
	Operation string            `json:"operation"`
	StartTime time.Time         `json:"start_time"`
	EndTime   time.Time         `json:"end_time,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Status    SpanStatus        `json:"status"`
	Attrs     map[string]string `json:"attrs,omitempty"`
}

// SpanStatus indicates success/failure.
type SpanStatus int

const (
	SpanOK SpanStatus = iota
	SpanError
)

// ─── Tracer ─────────────────────────────────────────────────────────────────

// Tracer keeps the most recent spans in memory for inspection.
type Tracer struct {
	mu       sync.Mutex
	spans    []Span
	maxSpans int
	enabled  bool
}

// TracerConfig configures the tracer.
type TracerConfig struct {
	Enabled  bool
	MaxSpans int // ring buffer size (default 10_000)
}

// DefaultTracerConfig returns production defaults.
func DefaultTracerConfig() TracerConfig {
	return TracerConfig{
		Enabled:  true,
		MaxSpans: 10_000,
	}
}

// NewTracer creates a new tracer.
func NewTracer(cfg TracerConfig) *Tracer {
	if cfg.MaxSpans <= 0 {
		cfg.MaxSpans = DefaultTracerConfig().MaxSpans
	}
	return &Tracer{
		spans:    make([]Span, 0, cfg.MaxSpans),
		maxSpans: cfg.MaxSpans,
		enabled:  cfg.Enabled,
	}
}

// StartSpan begins a new span with the given operation name.
// Returns the span (caller must call EndSpan when done).
func (t *Tracer) StartSpan(ctx context.Context, operation string, attrs map[string]string) *Span {
	if t == nil || !t.enabled {
		return &Span{Operation: operation}
	}

	return &Span{
		TraceID:   traceIDFromContext(ctx),
		SpanID:    uuid.NewString(),
		ParentID:  spanIDFromContext(ctx),
		Operation: operation,
		StartTime: time.Now(),
		Status:    SpanOK,
		Attrs:     attrs,
	}
}

// EndSpan completes a span and records it.
func (t *Tracer) EndSpan(span *Span, err error) {
	if t == nil || !t.enabled || span == nil {
		return
	}

	span.EndTime = time.Now()
	span.Duration = span.EndTime.Sub(span.StartTime)
	if err != nil {
		span.Status = SpanError
		if span.Attrs == nil {
			span.Attrs = make(map[string]string)
		}
		span.Attrs["error"] = err.Error()
		TraceErrors.Inc()
	}
	TracesRecorded.Inc()

	t.mu.Lock()
	defer t.mu.Unlock()

	// Ring buffer: overwrite oldest if at capacity
	if len(t.spans) >= t.maxSpans {
		t.spans = t.spans[1:]
	}
	t.spans = append(t.spans, *span)
}

// Spans returns a copy of the most recent spans.
func (t *Tracer) Spans(limit int) []Span {
	t.mu.Lock()
	defer t.mu.Unlock()

	if limit <= 0 || limit > len(t.spans) {
		limit = len(t.spans)
	}

	start := len(t.spans) - limit
	out := make([]Span, limit)
	copy(out, t.spans[start:])
	return out
}

// SpanCount returns the number of recorded spans.
func (t *Tracer) SpanCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.spans)
}

// Reset clears all recorded spans.
func (t *Tracer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.spans = t.spans[:0]
}

// ─── Context Helpers ────────────────────────────────────────────────────────

type contextKey string

const (
	traceIDKey contextKey = "showup-trace-id"
	spanIDKey  contextKey = "showup-span-id"
)

// WithTraceID returns a context with the given trace ID.
func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// WithSpanID returns a context with the given span ID.
func WithSpanID(ctx context.Context, spanID string) context.Context {
	return context.WithValue(ctx, spanIDKey, spanID)
}

func traceIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(traceIDKey).(string); ok && v != "" {
		return v
	}
	return uuid.NewString()
}

func spanIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(spanIDKey).(string); ok {
		return v
	}
	return ""
}

// ═══════════════════════════════════════════════════════════════════════════
// Prometheus Metrics
// ═══════════════════════════════════════════════════════════════════════════

// ─── Journey Metrics ────────────────────────────────────────────────────────

// JourneysCreated tracks total journeys created.
var JourneysCreated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "journey",
	Name:      "created_total",
	Help:      "Total journeys created.",
})

// ShowUps tracks total progress recordings.
var ShowUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "journey",
	Name:      "show_ups_total",
	Help:      "Total show-up progress recordings.",
})

// JourneysSettled tracks settlements by outcome.
var JourneysSettled = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "journey",
	Name:      "settled_total",
	Help:      "Total journeys settled by outcome.",
}, []string{"outcome"})

// DepositsLocked tracks value locked in unsettled journeys.
var DepositsLocked = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "showup",
	Subsystem: "journey",
	Name:      "deposits_locked",
	Help:      "Value currently locked in unsettled journey deposits.",
})

// ─── Ledger Metrics ─────────────────────────────────────────────────────────

// FeesCollected tracks total fee value credited to the fee beneficiary.
var FeesCollected = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "ledger",
	Name:      "fees_collected_total",
	Help:      "Total fee value credited to the fee beneficiary.",
})

// ValueWithdrawn tracks total value released by withdrawals.
var ValueWithdrawn = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "ledger",
	Name:      "withdrawn_total",
	Help:      "Total value released through withdrawals.",
})

// ─── Operation Metrics ──────────────────────────────────────────────────────

// OperationErrors tracks rejected operations by operation and error kind.
var OperationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "engine",
	Name:      "operation_errors_total",
	Help:      "Total rejected engine operations by error kind.",
}, []string{"operation", "kind"})

// OperationLatency tracks engine operation latency.
var OperationLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "showup",
	Subsystem: "engine",
	Name:      "operation_latency_ms",
	Help:      "Engine operation latency in milliseconds.",
	Buckets:   []float64{0.1, 0.5, 1, 5, 10, 25, 50, 100},
}, []string{"operation"})

// ─── Trace Metrics ──────────────────────────────────────────────────────────

// TracesRecorded tracks total spans recorded.
var TracesRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "traces",
	Name:      "spans_recorded_total",
	Help:      "Total trace spans recorded.",
})

// TraceErrors tracks error spans.
var TraceErrors = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "showup",
	Subsystem: "traces",
	Name:      "error_spans_total",
	Help:      "Total trace spans with error status.",
})
