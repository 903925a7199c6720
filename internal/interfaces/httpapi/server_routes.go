package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, cfg RouterConfig) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if cfg.MetricsHandler != nil {
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}
	if !cfg.SwaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerReadRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/tournaments", handler.ListTournaments)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}", handler.GetTournament)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/matches", handler.ListMatches)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/standings", handler.ListTournamentStandings)
	mux.HandleFunc("GET /v1/tournaments/{tournamentID}/groups/{groupID}/standings", handler.ListGroupStandings)
	mux.HandleFunc("GET /v1/matches/{matchID}", handler.GetMatch)
	// Eligibility may clear overdue suspensions as a side effect.
	mux.HandleFunc("GET /v1/matches/{matchID}/eligibility", handler.GetEligibility)
}

func registerWriteRoutes(mux *http.ServeMux, handler *Handler, limit func(http.Handler) http.Handler) {
	mux.Handle("POST /v1/tournaments/{tournamentID}/fixtures", limit(http.HandlerFunc(handler.GenerateFixtures)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/knockout", limit(http.HandlerFunc(handler.GenerateKnockout)))
	mux.Handle("POST /v1/tournaments/{tournamentID}/qualification", limit(http.HandlerFunc(handler.QualifyGroups)))
	mux.Handle("POST /v1/matches/{matchID}/result", limit(http.HandlerFunc(handler.RecordResult)))
	mux.Handle("POST /v1/matches/{matchID}/walkover", limit(http.HandlerFunc(handler.RecordWalkover)))
	mux.Handle("POST /v1/matches/{matchID}/cancellation", limit(http.HandlerFunc(handler.RecordCancellation)))
	mux.Handle("POST /v1/matches/{matchID}/events", limit(http.HandlerFunc(handler.IngestEvent)))
}
