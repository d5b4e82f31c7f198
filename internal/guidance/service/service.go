package service

import (
	"context"
	"errors"
	"time"

	"github.com/yungbote/wellspring-backend/internal/guidance/engine"
	"github.com/yungbote/wellspring-backend/internal/guidance/provider"
	"github.com/yungbote/wellspring-backend/internal/observability"
	"github.com/yungbote/wellspring-backend/internal/platform/logger"
)

// ErrProviderMisconfigured is returned for auth and not-found provider
// failures when fallback for them is disabled.
var ErrProviderMisconfigured = errors.New("guidance provider misconfigured")

type Request struct {
	Text string
	Mode string
}

type GuidanceService interface {
	Guide(ctx context.Context, req Request) (engine.Result, error)
}

type guidanceService struct {
	log      *logger.Logger
	composer *engine.Composer
	strategy Strategy
	metrics  *observability.Metrics
}

func NewGuidanceService(log *logger.Logger, composer *engine.Composer, strategy Strategy, metrics *observability.Metrics) GuidanceService {
	if log == nil {
		log = logger.Nop()
	}
	if strategy == nil {
		strategy = RulesOnly{}
	}
	serviceLog := log.With("service", "GuidanceService")
	serviceLog.Info("guidance strategy resolved", "strategy", strategy.Name())
	return &guidanceService{
		log:      serviceLog,
		composer: composer,
		strategy: strategy,
		metrics:  metrics,
	}
}

func (s *guidanceService) Guide(ctx context.Context, req Request) (engine.Result, error) {
	switch st := s.strategy.(type) {
	case ExternalProvider:
		return s.viaProvider(ctx, st, req)
	default:
		res := s.composer.Compose(ctx, req.Text, req.Mode)
		s.metrics.ObserveGuidance(engine.SourceRules, "ok")
		return res, nil
	}
}

func (s *guidanceService) viaProvider(ctx context.Context, st ExternalProvider, req Request) (engine.Result, error) {
	a := s.composer.Analyze(req.Text, req.Mode)

	start := time.Now()
	out, err := st.Client.Send(ctx, buildMessages(a), st.Options)
	if err == nil {
		out = cleanCompletion(out)
		if out == "" {
			err = &provider.Error{Kind: provider.KindMalformed, Err: errors.New("completion empty after cleanup")}
		}
	}

	if err == nil {
		s.metrics.ObserveProvider("ok", time.Since(start))
		s.metrics.ObserveGuidance(engine.SourceProvider, "ok")
		return s.composer.Finish(a, out), nil
	}

	kind := provider.KindOf(err)
	if kind == "" {
		kind = provider.KindNetwork
	}
	s.metrics.ObserveProvider(string(kind), time.Since(start))

	if ctxErr := ctx.Err(); ctxErr != nil {
		s.metrics.ObserveGuidance(engine.SourceProvider, "canceled")
		return engine.Result{}, ctxErr
	}

	if kind.Configuration() {
		s.log.Error("guidance provider rejected configuration", "kind", string(kind), "error", err)
		if !st.FallbackOnConfigError {
			s.metrics.ObserveGuidance(engine.SourceProvider, "misconfigured")
			return engine.Result{}, errors.Join(ErrProviderMisconfigured, err)
		}
	} else {
		s.log.Warn("guidance provider failed, using rules", "kind", string(kind), "error", err)
	}

	res := s.composer.Compose(ctx, req.Text, req.Mode)
	s.metrics.ObserveGuidance(engine.SourceRules, "fallback")
	return res, nil
}
