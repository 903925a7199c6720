package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/riskibarqy/league-engine/internal/config"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

func memoryConfig() config.Config {
	return config.Config{
		AppEnv:                  config.EnvDev,
		ServiceName:             "league-engine-test",
		HTTPAddr:                ":0",
		ReadTimeout:             time.Second,
		WriteTimeout:            time.Second,
		StorageDriver:           config.StorageMemory,
		SeedDemoData:            true,
		CacheEnabled:            true,
		CacheTTL:                time.Minute,
		CORSAllowedOrigins:      []string{"*"},
		Catalog:                 standing.DefaultCatalog(),
		DefaultSanctionDuration: 1,
		YellowCardThreshold:     2,
		QualifiersPerGroup:      2,
		DispatchPoolSize:        2,
		DispatchDeliveryTimeout: time.Second,
		MetricsEnabled:          true,
	}
}

func TestNewHTTPServer_MemoryDriver(t *testing.T) {
	srv, err := NewHTTPServer(t.Context(), memoryConfig(), logging.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, srv.Close(context.Background()))
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/tournaments", nil)
	rec := httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), memory.TournamentIDSpringCup)

	req = httptest.NewRequest(http.MethodPost, "/v1/tournaments/"+memory.TournamentIDSpringCup+"/fixtures", nil)
	rec = httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	srv.HTTP.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.Contains(rec.Body.String(), "league_engine_"), "expected namespaced metrics")
}

func TestNewHTTPServer_RejectsEmptyAddr(t *testing.T) {
	cfg := memoryConfig()
	cfg.HTTPAddr = ""

	_, err := NewHTTPServer(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}

func TestNewHTTPServer_WebhookRequiresValidURL(t *testing.T) {
	cfg := memoryConfig()
	cfg.WebhookEnabled = true
	cfg.WebhookURL = "not a url"
	cfg.WebhookTimeout = time.Second

	_, err := NewHTTPServer(t.Context(), cfg, logging.NewNop())
	require.Error(t, err)
}
