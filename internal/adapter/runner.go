package adapter

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tandemkit/tandem/internal/envelope"
	"github.com/tandemkit/tandem/internal/store"
)

// Runner wraps an adapter with the shared execution contract: input
// validation before any model call, a telemetry span per invocation,
// failure folding, and invocation persistence. It never retries.
type Runner struct {
	adapter Adapter
	tracer  trace.Tracer
	store   *store.Store
}

// NewRunner builds a runner. The store is optional; a nil store disables
// persistence.
func NewRunner(a Adapter, tracer trace.Tracer, st *store.Store) *Runner {
	return &Runner{adapter: a, tracer: tracer, store: st}
}

// Adapter returns the wrapped adapter.
func (r *Runner) Adapter() Adapter {
	return r.adapter
}

// Execute runs one invocation synchronously. The returned response always
// carries exactly one status; failures never propagate as errors.
func (r *Runner) Execute(ctx context.Context, req envelope.Request) envelope.Response {
	ctx, span := r.tracer.Start(ctx, "agent.execute", trace.WithAttributes(
		attribute.String("tandem.adapter", r.adapter.Name()),
	))
	defer span.End()

	start := time.Now()
	var resp envelope.Response
	if err := req.Validate(); err != nil {
		resp = r.fold(Invalidf("%v", err))
	} else if out, err := r.adapter.Execute(ctx, req); err != nil {
		resp = r.fold(err)
	} else {
		resp = out
		if resp.Status == "" {
			resp.Status = envelope.StatusSuccess
		}
	}
	latency := time.Since(start)

	resp.ID = uuid.NewString()
	resp.Adapter = r.adapter.Name()

	span.SetAttributes(
		attribute.String("tandem.status", resp.Status),
		attribute.Int64("tandem.tokens.total", resp.Usage.TotalTokens),
	)
	if resp.Status != envelope.StatusSuccess {
		span.SetStatus(codes.Error, resp.Error)
	}

	r.record(ctx, req, resp, latency)
	return resp
}

func (r *Runner) fold(err error) envelope.Response {
	resp := envelope.Failure(err.Error())
	log.Error().Str("adapter", r.adapter.Name()).Str("kind", string(KindOf(err))).Err(err).Msg("execution failed")
	return resp
}

func (r *Runner) record(ctx context.Context, req envelope.Request, resp envelope.Response, latency time.Duration) {
	if r.store == nil {
		return
	}
	inv := store.Invocation{
		ID:        resp.ID,
		Adapter:   resp.Adapter,
		Status:    resp.Status,
		Prompt:    req.Topic(),
		Content:   resp.Content,
		Error:     resp.Error,
		Usage:     resp.Usage,
		LatencyMS: latency.Milliseconds(),
	}
	if err := r.store.Record(ctx, inv); err != nil {
		log.Warn().Err(err).Str("invocation_id", resp.ID).Msg("record invocation")
	}
}
