package planning

import (
	"context"
	"log/slog"
	"time"

	"github.com/vsinha/mps/pkg/domain/entities"
)

// Use case names reported to observers
const (
	UseCaseFeasibility = "feasibility"
	UseCasePlan        = "plan"
	UseCasePlanAll     = "plan_all"
	UseCaseValidate    = "validate"
)

// UseCaseEvent describes one finished planner call. Only the fields of its use case are set.
type UseCaseEvent struct {
	Name     string
	Duration time.Duration
	Err      error

	Product  entities.MaterialCode
	Policy   entities.Policy
	MaxSets  int64
	CacheHit bool
	Alerts   int
	Feasible bool

	Requests int

	Edges    int
	Errors   int
	Warnings int
}

// Success reports whether the call returned without error
func (e UseCaseEvent) Success() bool {
	return e.Err == nil
}

// UseCaseObserver receives one event per planner call
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

type noopObserver struct{}

func (noopObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes one structured record per planner call to logger
func NewLogUseCaseObserver(logger *slog.Logger) UseCaseObserver {
	if logger == nil {
		return noopObserver{}
	}
	return &logObserver{logger: logger}
}

func (o *logObserver) ObserveUseCase(ctx context.Context, e UseCaseEvent) {
	attrs := []slog.Attr{
		slog.String("use_case", e.Name),
		slog.Int64("duration_ms", e.Duration.Milliseconds()),
	}
	if e.Product != "" {
		attrs = append(attrs, slog.String("product", string(e.Product)))
	}

	if e.Err != nil {
		attrs = append(attrs, slog.String("error", e.Err.Error()))
		o.logger.LogAttrs(ctx, slog.LevelError, "planner use case failed", attrs...)
		return
	}

	switch e.Name {
	case UseCaseFeasibility:
		attrs = append(attrs,
			slog.Int64("max_sets", e.MaxSets),
			slog.Bool("cache_hit", e.CacheHit),
			slog.Int("alerts", e.Alerts))
	case UseCasePlan:
		attrs = append(attrs,
			slog.String("policy", string(e.Policy)),
			slog.Bool("cache_hit", e.CacheHit),
			slog.Int("alerts", e.Alerts),
			slog.Bool("feasible", e.Feasible))
	case UseCasePlanAll:
		attrs = append(attrs, slog.Int("requests", e.Requests))
	case UseCaseValidate:
		attrs = append(attrs,
			slog.Int("edges", e.Edges),
			slog.Int("errors", e.Errors),
			slog.Int("warnings", e.Warnings))
	}
	o.logger.LogAttrs(ctx, slog.LevelInfo, "planner use case", attrs...)
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return noopObserver{}
}
