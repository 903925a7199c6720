package app

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/config"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/infrastructure/notifier"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-engine/internal/interfaces/httpapi"
	basecache "github.com/riskibarqy/league-engine/internal/platform/cache"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
	"github.com/riskibarqy/league-engine/internal/platform/resilience"
	"github.com/riskibarqy/league-engine/internal/usecase"
)

const metricsNamespace = "league_engine"

// Server is the assembled HTTP service plus the resources it owns.
type Server struct {
	HTTP       *http.Server
	dispatcher *dispatch.Dispatcher
	db         *sqlx.DB
	logger     *logging.Logger
}

func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Server, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	recorder := metrics.NewRecorder(metricsNamespace)
	tx, db, err := openStore(ctx, cfg, logger, recorder)
	if err != nil {
		return nil, err
	}

	dispatcher, err := newDispatcher(cfg, logger, recorder)
	if err != nil {
		closeDB(db, logger)
		return nil, err
	}

	settings := usecase.Settings{
		Catalog:                   cfg.Catalog,
		DefaultSanctionDuration:   cfg.DefaultSanctionDuration,
		DefaultYellowThreshold:    cfg.YellowCardThreshold,
		DefaultQualifiersPerGroup: cfg.QualifiersPerGroup,
	}
	shuffler := rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15))

	handler := httpapi.NewHandler(
		usecase.NewTournamentService(tx),
		usecase.NewFixtureService(tx, dispatcher, recorder, logger.Named("fixtures")),
		usecase.NewResultService(tx, settings, dispatcher, recorder, logger.Named("results")),
		usecase.NewDisciplineService(tx, settings, dispatcher, recorder, logger.Named("discipline")),
		usecase.NewBracketService(tx, shuffler, dispatcher, recorder, logger.Named("bracket")),
		usecase.NewStandingService(tx, settings, logger.Named("standings")),
		logger,
	)

	routerCfg := httpapi.RouterConfig{
		SwaggerEnabled:     cfg.SwaggerEnabled,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RateLimitRPS:       cfg.RateLimitRPS,
		RateLimitBurst:     cfg.RateLimitBurst,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = recorder.Handler()
	}

	return &Server{
		HTTP: &http.Server{
			Addr:         cfg.HTTPAddr,
			Handler:      httpapi.NewRouter(handler, logger, routerCfg),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		dispatcher: dispatcher,
		db:         db,
		logger:     logger,
	}, nil
}

// Close drains pending notifications and releases the database pool. Call it
// after the HTTP server has stopped accepting requests.
func (s *Server) Close(ctx context.Context) error {
	var errs []error
	if err := s.dispatcher.Close(ctx); err != nil {
		errs = append(errs, crerr.Wrap(err, "close dispatcher"))
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, crerr.Wrap(err, "close db"))
		}
	}
	return crerr.Join(errs...)
}

func openStore(ctx context.Context, cfg config.Config, logger *logging.Logger, recorder *metrics.Recorder) (store.TxRunner, *sqlx.DB, error) {
	var (
		tx store.TxRunner
		db *sqlx.DB
	)

	switch cfg.StorageDriver {
	case config.StoragePostgres:
		var err error
		db, err = postgres.Open(ctx, postgres.OpenConfig{
			URL:                   cfg.DBURL,
			DisablePreparedBinary: cfg.DBDisablePreparedBinary,
		})
		if err != nil {
			return nil, nil, err
		}
		if cfg.SeedDemoData {
			if err := postgres.BootstrapSeed(ctx, db); err != nil {
				closeDB(db, logger)
				return nil, nil, crerr.Wrap(err, "seed postgres")
			}
		}
		tx = postgres.NewStore(db)
	default:
		seed := memory.Seed{}
		if cfg.SeedDemoData {
			seed = memory.DemoSeed()
		}
		tx = memory.NewStore(seed)
	}
	logger.Info("storage ready", "driver", cfg.StorageDriver, "seeded", cfg.SeedDemoData)

	if cfg.CacheEnabled {
		readCache := basecache.NewStore(cfg.CacheTTL)
		recorder.ObserveCache(readCache.Counters)
		tx = cache.NewTxRunner(tx, readCache)
		logger.Info("read cache enabled", "ttl", cfg.CacheTTL.String())
	}
	return tx, db, nil
}

func newDispatcher(cfg config.Config, logger *logging.Logger, recorder *metrics.Recorder) (*dispatch.Dispatcher, error) {
	sinks := []dispatch.Sink{dispatch.NewLogSink(logger.Named("events"))}
	if cfg.WebhookEnabled {
		webhook, err := notifier.NewWebhookSink(notifier.WebhookConfig{
			URL:     cfg.WebhookURL,
			Secret:  cfg.WebhookSecret,
			Timeout: cfg.WebhookTimeout,
			Topics:  cfg.WebhookTopics,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.WebhookCircuitEnabled,
				FailureThreshold: cfg.WebhookCircuitFailureCount,
				OpenTimeout:      cfg.WebhookCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.WebhookCircuitHalfOpenReq,
			},
		}, logger.Named("webhook"))
		if err != nil {
			return nil, crerr.Wrap(err, "build webhook sink")
		}
		sinks = append(sinks, webhook)
	}

	return dispatch.New(dispatch.Config{
		PoolSize:        cfg.DispatchPoolSize,
		DeliveryTimeout: cfg.DispatchDeliveryTimeout,
	}, logger.Named("dispatch"), recorder, sinks...)
}

func closeDB(db *sqlx.DB, logger *logging.Logger) {
	if db == nil {
		return
	}
	if err := db.Close(); err != nil {
		logger.Warn("close db failed", "error", err)
	}
}
