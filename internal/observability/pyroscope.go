package observability

import (
	"context"
	"runtime"

	"github.com/grafana/pyroscope-go"

	"github.com/riskibarqy/league-engine/internal/config"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

// mutexProfileRate samples one in five contention events; the memory store
// serializes writers behind a single lock.
const mutexProfileRate = 5

func startPyroscope(cfg config.Config, logger *logging.Logger) (shutdownFunc, error) {
	if !cfg.PyroscopeEnabled {
		logger.Info("continuous profiling disabled", "reason", "PYROSCOPE_ENABLED=false")
		return noopShutdown, nil
	}

	previousRate := runtime.SetMutexProfileFraction(mutexProfileRate)
	profiler, err := pyroscope.Start(pyroscope.Config{
		ApplicationName:   cfg.PyroscopeAppName,
		ServerAddress:     cfg.PyroscopeServerAddress,
		AuthToken:         cfg.PyroscopeAuthToken,
		BasicAuthUser:     cfg.PyroscopeBasicAuthUser,
		BasicAuthPassword: cfg.PyroscopeBasicAuthPassword,
		UploadRate:        cfg.PyroscopeUploadRate,
		Tags: map[string]string{
			"env":     cfg.AppEnv,
			"version": cfg.ServiceVersion,
			"storage": cfg.StorageDriver,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
			pyroscope.ProfileMutexCount,
			pyroscope.ProfileMutexDuration,
		},
	})
	if err != nil {
		runtime.SetMutexProfileFraction(previousRate)
		return nil, err
	}

	logger.Info("continuous profiling enabled", "server", cfg.PyroscopeServerAddress, "application", cfg.PyroscopeAppName)
	return func(context.Context) error {
		defer runtime.SetMutexProfileFraction(previousRate)
		return profiler.Stop()
	}, nil
}
