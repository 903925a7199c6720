package observability

import (
	"context"

	crerr "github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/config"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

const attrStorageDriver = attribute.Key("league.storage_driver")

type shutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Stack owns the tracing, profiling and debug listeners started for one
// process.
type Stack struct {
	stops  []namedStop
	logger *logging.Logger
}

type namedStop struct {
	name string
	stop shutdownFunc
}

// Setup starts every enabled backend. On failure the ones already running
// are stopped before the error is returned.
func Setup(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Stack, error) {
	if logger == nil {
		logger = logging.Default()
	}
	s := &Stack{logger: logger.Named("observability")}

	steps := []struct {
		name  string
		start func(config.Config, *logging.Logger) (shutdownFunc, error)
	}{
		{"uptrace", startUptrace},
		{"pyroscope", startPyroscope},
		{"pprof", startPprof},
	}
	for _, step := range steps {
		stop, err := step.start(cfg, s.logger)
		if err != nil {
			_ = s.Shutdown(ctx)
			return nil, crerr.Wrapf(err, "start %s", step.name)
		}
		s.stops = append(s.stops, namedStop{name: step.name, stop: stop})
	}
	return s, nil
}

// Shutdown stops backends in reverse start order so the tracer flushes last.
func (s *Stack) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	var errs []error
	for i := len(s.stops) - 1; i >= 0; i-- {
		item := s.stops[i]
		if err := item.stop(ctx); err != nil {
			s.logger.WarnContext(ctx, "observability shutdown failed", "backend", item.name, "error", err)
			errs = append(errs, crerr.Wrapf(err, "stop %s", item.name))
		}
	}
	s.stops = nil
	return crerr.Join(errs...)
}
