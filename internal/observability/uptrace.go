package observability

import (
	"strings"

	"github.com/uptrace/uptrace-go/uptrace"

	"github.com/riskibarqy/league-engine/internal/config"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

// startUptrace installs the global OpenTelemetry providers. Spans opened by
// the HTTP layer and otelsql flow through them.
func startUptrace(cfg config.Config, logger *logging.Logger) (shutdownFunc, error) {
	dsn := strings.TrimSpace(cfg.UptraceDSN)
	switch {
	case !cfg.UptraceEnabled:
		logger.Info("tracing disabled", "reason", "UPTRACE_ENABLED=false")
		return noopShutdown, nil
	case dsn == "":
		logger.Warn("tracing disabled", "reason", "no UPTRACE_DSN or OTLP headers")
		return noopShutdown, nil
	}

	uptrace.ConfigureOpentelemetry(
		uptrace.WithDSN(dsn),
		uptrace.WithServiceName(cfg.ServiceName),
		uptrace.WithServiceVersion(cfg.ServiceVersion),
		uptrace.WithDeploymentEnvironment(cfg.AppEnv),
		uptrace.WithResourceAttributes(attrStorageDriver.String(cfg.StorageDriver)),
	)
	logger.Info("tracing enabled", "exporter", "uptrace", "storage", cfg.StorageDriver)
	return uptrace.Shutdown, nil
}
