package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/usecase"
)

const maxRequestBodyBytes = 64 << 10

type Handler struct {
	tournamentService *usecase.TournamentService
	fixtureService    *usecase.FixtureService
	resultService     *usecase.ResultService
	disciplineService *usecase.DisciplineService
	bracketService    *usecase.BracketService
	standingService   *usecase.StandingService
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	tournamentService *usecase.TournamentService,
	fixtureService *usecase.FixtureService,
	resultService *usecase.ResultService,
	disciplineService *usecase.DisciplineService,
	bracketService *usecase.BracketService,
	standingService *usecase.StandingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		tournamentService: tournamentService,
		fixtureService:    fixtureService,
		resultService:     resultService,
		disciplineService: disciplineService,
		bracketService:    bracketService,
		standingService:   standingService,
		logger:            logger.Named("httpapi"),
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) ListTournaments(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournaments")
	defer span.End()

	items, err := h.tournamentService.ListTournaments(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list tournaments failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	out := make([]tournamentDTO, 0, len(items))
	for _, t := range items {
		out = append(out, tournamentToDTO(t))
	}
	writeSuccess(ctx, w, http.StatusOK, out)
}

func (h *Handler) GetTournament(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTournament")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	detail, err := h.tournamentService.GetTournament(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "get tournament failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, tournamentDetailToDTO(detail))
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	matches, err := h.tournamentService.ListMatches(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list matches failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchesToDTO(matches))
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))

	m, err := h.tournamentService.GetMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "get match failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchToDTO(m))
}

func (h *Handler) GenerateFixtures(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateFixtures")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	result, err := h.fixtureService.GenerateFixtures(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "generate fixtures failed", "tournament_id", tournamentID, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Outcome != usecase.OutcomeApplied {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, fixturesResultDTO{
		Outcome: string(result.Outcome),
		Reason:  result.Reason,
		Matches: matchesToDTO(result.Matches),
	})
}

func (h *Handler) GenerateKnockout(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GenerateKnockout")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	result, err := h.bracketService.GenerateKnockout(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "generate knockout failed", "tournament_id", tournamentID, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusCreated
	if result.Outcome != usecase.OutcomeApplied {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, knockoutResultDTO{
		Outcome:  string(result.Outcome),
		Reason:   result.Reason,
		Phase:    result.Phase,
		Matches:  matchesToDTO(result.Matches),
		Unpaired: result.Unpaired,
	})
}

func (h *Handler) QualifyGroups(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.QualifyGroups")
	defer span.End()

	var req qualificationRequest
	if err := h.decodeOptional(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	tables, err := h.standingService.QualifyGroups(ctx, tournamentID, req.PerGroup)
	if err != nil {
		h.logger.WarnContext(ctx, "qualify groups failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupTablesToDTO(tables))
}

func (h *Handler) ListTournamentStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournamentStandings")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	tables, err := h.standingService.ListTournament(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "list standings failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupTablesToDTO(tables))
}

func (h *Handler) ListGroupStandings(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListGroupStandings")
	defer span.End()

	tournamentID := strings.TrimSpace(r.PathValue("tournamentID"))
	span.SetAttributes(attrTournamentID.String(tournamentID))
	groupID := strings.TrimSpace(r.PathValue("groupID"))
	table, err := h.standingService.ListGroup(ctx, tournamentID, groupID)
	if err != nil {
		h.logger.WarnContext(ctx, "list group standings failed", "tournament_id", tournamentID, "group_id", groupID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, groupTableToDTO(table))
}

func (h *Handler) RecordResult(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordResult")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))
	var req recordResultRequest
	if err := h.decode(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.RecordMatchEnd(ctx, usecase.RecordMatchEndInput{
		MatchID:   matchID,
		HomeGoals: *req.HomeGoals,
		AwayGoals: *req.AwayGoals,
		HomeBonus: req.HomeBonus.toDomain(),
		AwayBonus: req.AwayBonus.toDomain(),
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record result failed", "match_id", matchID, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultToDTO(result))
}

func (h *Handler) RecordWalkover(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordWalkover")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))
	var req walkoverRequest
	if err := h.decode(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.RecordWalkover(ctx, matchID, req.WinnerTeamID)
	if err != nil {
		h.logger.WarnContext(ctx, "record walkover failed", "match_id", matchID, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultToDTO(result))
}

func (h *Handler) RecordCancellation(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordCancellation")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))
	var req cancellationRequest
	if err := h.decode(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.resultService.RecordCancellation(ctx, matchID, req.Reason)
	if err != nil {
		h.logger.WarnContext(ctx, "record cancellation failed", "match_id", matchID, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchResultToDTO(result))
}

func (h *Handler) IngestEvent(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.IngestEvent")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))
	var req ingestEventRequest
	if err := h.decode(ctx, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.disciplineService.IngestEvent(ctx, usecase.IngestEventInput{
		MatchID:  matchID,
		PlayerID: req.PlayerID,
		Type:     discipline.EventType(strings.ToUpper(req.Type)),
		Minute:   req.Minute,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "ingest event failed", "match_id", matchID, "type", req.Type, "reason", usecase.ReasonCode(err), "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, ingestEventResultToDTO(result))
}

func (h *Handler) GetEligibility(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetEligibility")
	defer span.End()

	matchID, err := parseMatchID(r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	span.SetAttributes(attrMatchID.Int64(matchID))

	eligibility, err := h.disciplineService.ResolveEligibility(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "resolve eligibility failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, eligibilityToDTO(eligibility))
}

func parseMatchID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.PathValue("matchID"))
	matchID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || matchID <= 0 {
		return 0, fmt.Errorf("%w: invalid match id %q", usecase.ErrInvalidInput, raw)
	}
	return matchID, nil
}

// decode reads a JSON body strictly and validates it.
func (h *Handler) decode(ctx context.Context, r *http.Request, payload any) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

// decodeOptional is decode for endpoints whose body may be empty.
func (h *Handler) decodeOptional(ctx context.Context, r *http.Request, payload any) error {
	decoder := jsoniter.NewDecoder(io.LimitReader(r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(payload); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, payload)
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
