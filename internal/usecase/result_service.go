package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type RecordMatchEndInput struct {
	MatchID   int64
	HomeGoals int
	AwayGoals int
	HomeBonus standing.Bonus
	AwayBonus standing.Bonus
}

// MatchResult is the outcome of a terminal transition. Standings holds the
// records of both teams after the update; it is empty for knockout matches
// and for matches that were already terminal.
type MatchResult struct {
	Outcome           Outcome
	Reason            string
	Match             match.Match
	Standings         []standing.Record
	ServedSuspensions []discipline.Suspension
}

type ResultService struct {
	tx        store.TxRunner
	applier   resultApplier
	publisher EventPublisher
	metrics   *metrics.Recorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewResultService(tx store.TxRunner, settings Settings, publisher EventPublisher, recorder *metrics.Recorder, logger *logging.Logger) *ResultService {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}

	return &ResultService{
		tx:        tx,
		applier:   resultApplier{settings: settings},
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *ResultService) RecordMatchEnd(ctx context.Context, input RecordMatchEndInput) (MatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordMatchEnd", attribute.Int64("match.id", input.MatchID))
	defer span.End()

	if input.MatchID <= 0 {
		return MatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if input.HomeGoals < 0 || input.AwayGoals < 0 {
		return MatchResult{}, fmt.Errorf("%w: goals must be >= 0", ErrInvalidInput)
	}

	result, err := s.run(ctx, input.MatchID, func(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament) (MatchResult, error) {
		return s.applier.finish(ctx, repos, m, t, finishRequest{
			to:        match.StatusFinished,
			score:     match.Score{Home: input.HomeGoals, Away: input.AwayGoals},
			homeBonus: input.HomeBonus,
			awayBonus: input.AwayBonus,
			at:        s.now().UTC(),
		})
	})
	recordSpanError(span, err)
	return result, err
}

// RecordWalkover awards the scheme's walkover score to winnerTeamID.
func (s *ResultService) RecordWalkover(ctx context.Context, matchID int64, winnerTeamID string) (MatchResult, error) {
	winnerTeamID = strings.TrimSpace(winnerTeamID)
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordWalkover", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return MatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if winnerTeamID == "" {
		return MatchResult{}, fmt.Errorf("%w: winner team id is required", ErrInvalidInput)
	}

	result, err := s.run(ctx, matchID, func(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament) (MatchResult, error) {
		if m.IsBye() || !m.Involves(winnerTeamID) {
			return MatchResult{}, fmt.Errorf("%w: team %s does not play match %d", ErrInvalidInput, winnerTeamID, m.ID)
		}
		goals := s.applier.settings.scheme(t).WalkoverGoals
		score := match.Score{Home: goals}
		if winnerTeamID == m.AwayTeamID {
			score = match.Score{Away: goals}
		}
		return s.applier.finish(ctx, repos, m, t, finishRequest{
			to:    match.StatusWalkover,
			score: score,
			notes: []string{"walkover awarded to " + winnerTeamID},
			at:    s.now().UTC(),
		})
	})
	recordSpanError(span, err)
	return result, err
}

// RecordCancellation ends a match abandoned after an incident. Both teams
// take a penalty loss.
func (s *ResultService) RecordCancellation(ctx context.Context, matchID int64, reason string) (MatchResult, error) {
	reason = strings.TrimSpace(reason)
	ctx, span := startUsecaseSpan(ctx, "usecase.ResultService.RecordCancellation", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return MatchResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if reason == "" {
		return MatchResult{}, fmt.Errorf("%w: cancellation reason is required", ErrInvalidInput)
	}

	result, err := s.run(ctx, matchID, func(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament) (MatchResult, error) {
		return s.applier.finish(ctx, repos, m, t, finishRequest{
			to:    match.StatusCancelled,
			notes: []string{reason},
			at:    s.now().UTC(),
		})
	})
	recordSpanError(span, err)
	return result, err
}

type finishFunc func(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament) (MatchResult, error)

func (s *ResultService) run(ctx context.Context, matchID int64, fn finishFunc) (MatchResult, error) {
	var result MatchResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		m, t, err := loadMatch(ctx, repos, matchID)
		if err != nil {
			return err
		}
		result, err = fn(ctx, repos, m, t)
		return err
	})
	if err != nil {
		s.logger.WarnContext(ctx, "match result rejected", "match_id", matchID, "reason", ReasonCode(err), "error", err)
		return MatchResult{}, err
	}

	announceResult(ctx, result, s.publisher, s.metrics, s.logger)
	return result, nil
}

// loadMatch locks the match row so event ingestion, result processing and
// the suspension sweep on one match run one after another.
func loadMatch(ctx context.Context, repos store.Repositories, matchID int64) (match.Match, tournament.Tournament, error) {
	m, exists, err := repos.Matches.Lock(ctx, matchID)
	if err != nil {
		return match.Match{}, tournament.Tournament{}, fmt.Errorf("get match: %w", err)
	}
	if !exists {
		return match.Match{}, tournament.Tournament{}, fmt.Errorf("%w: match=%d", ErrNotFound, matchID)
	}
	t, exists, err := repos.Tournaments.GetByID(ctx, m.TournamentID)
	if err != nil {
		return match.Match{}, tournament.Tournament{}, fmt.Errorf("get tournament: %w", err)
	}
	if !exists {
		return match.Match{}, tournament.Tournament{}, fmt.Errorf("%w: tournament=%s", ErrNotFound, m.TournamentID)
	}
	return m, t, nil
}

// announceResult runs after commit. Nothing here may fail the operation.
func announceResult(ctx context.Context, result MatchResult, publisher EventPublisher, recorder *metrics.Recorder, logger *logging.Logger) {
	recorder.MatchFinalized(string(result.Match.Status), string(result.Outcome))
	if result.Outcome != OutcomeApplied {
		logger.InfoContext(ctx, "match already terminal, result ignored", "match_id", result.Match.ID, "status", result.Match.Status)
		return
	}

	logger.InfoContext(ctx, "match finalized",
		"match_id", result.Match.ID,
		"tournament_id", result.Match.TournamentID,
		"status", result.Match.Status,
		"standings_updated", len(result.Standings),
	)
	publisher.Publish(ctx, dispatch.TopicMatchFinalized, fmt.Sprint(result.Match.ID), matchFinalizedPayload(result))

	recorder.SuspensionsServed(len(result.ServedSuspensions))
	for _, sus := range result.ServedSuspensions {
		logger.InfoContext(ctx, "suspension served", "suspension_id", sus.ID, "player_id", sus.PlayerID, "tournament_id", sus.TournamentID)
		publisher.Publish(ctx, dispatch.TopicSuspensionServed, sus.PlayerID, map[string]any{
			"suspension_id": sus.ID,
			"player_id":     sus.PlayerID,
			"tournament_id": sus.TournamentID,
		})
	}
}

func matchFinalizedPayload(result MatchResult) map[string]any {
	payload := map[string]any{
		"match_id":      result.Match.ID,
		"tournament_id": result.Match.TournamentID,
		"group_id":      result.Match.GroupID,
		"status":        result.Match.Status,
		"home_team_id":  result.Match.HomeTeamID,
		"away_team_id":  result.Match.AwayTeamID,
	}
	if result.Match.Score != nil {
		payload["score"] = *result.Match.Score
	}
	return payload
}

type finishRequest struct {
	to        match.Status
	score     match.Score
	homeBonus standing.Bonus
	awayBonus standing.Bonus
	notes     []string
	at        time.Time
}

// resultApplier performs a terminal transition and its standings deltas. It
// runs inside the caller's transaction so the status guard and both records
// commit or roll back together.
type resultApplier struct {
	settings Settings
}

func (a resultApplier) finish(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament, req finishRequest) (MatchResult, error) {
	if m.Status.IsTerminal() {
		return MatchResult{Outcome: OutcomeAlreadyTerminal, Reason: ReasonAlreadyTerminalMatch, Match: m}, nil
	}
	if m.IsBye() {
		return MatchResult{}, fmt.Errorf("%w: match %d has no opponent", ErrInvalidInput, m.ID)
	}

	transition := match.Transition{
		MatchID:   m.ID,
		From:      match.OpenStatuses,
		To:        req.to,
		Notes:     req.notes,
		HomeBonus: req.homeBonus,
		AwayBonus: req.awayBonus,
		At:        req.at,
	}
	if req.to != match.StatusCancelled {
		score := req.score
		transition.Score = &score
	}

	applied, err := repos.Matches.Transition(ctx, transition)
	if err != nil {
		return MatchResult{}, fmt.Errorf("transition match %d: %w", m.ID, err)
	}
	updated, _, err := repos.Matches.GetByID(ctx, m.ID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("reload match %d: %w", m.ID, err)
	}
	if !applied {
		return MatchResult{Outcome: OutcomeAlreadyTerminal, Reason: ReasonAlreadyTerminalMatch, Match: updated}, nil
	}

	result := MatchResult{Outcome: OutcomeApplied, Match: updated}
	if !m.IsKnockout() {
		records, err := a.applyStandings(ctx, repos, m, t, req)
		if err != nil {
			return MatchResult{}, err
		}
		result.Standings = records
	}

	if req.to == match.StatusFinished {
		served, err := sweepSuspensions(ctx, repos, m.TournamentID, []string{m.HomeTeamID, m.AwayTeamID}, req.at)
		if err != nil {
			return MatchResult{}, fmt.Errorf("sweep suspensions: %w", err)
		}
		result.ServedSuspensions = served
	}
	return result, nil
}

func (a resultApplier) applyStandings(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament, req finishRequest) ([]standing.Record, error) {
	scheme := a.settings.scheme(t)
	home, err := lockStanding(ctx, repos, standing.Key{TournamentID: m.TournamentID, GroupID: m.GroupID, TeamID: m.HomeTeamID})
	if err != nil {
		return nil, err
	}
	away, err := lockStanding(ctx, repos, standing.Key{TournamentID: m.TournamentID, GroupID: m.GroupID, TeamID: m.AwayTeamID})
	if err != nil {
		return nil, err
	}

	switch req.to {
	case match.StatusCancelled:
		home.ApplyPenaltyLoss(scheme)
		away.ApplyPenaltyLoss(scheme)
	default:
		home.ApplyResult(scheme, req.score.Home, req.score.Away, req.homeBonus)
		away.ApplyResult(scheme, req.score.Away, req.score.Home, req.awayBonus)
	}

	for _, rec := range []standing.Record{home, away} {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", standing.ErrInconsistentWrite, err)
		}
		if err := repos.Standings.Save(ctx, rec); err != nil {
			return nil, fmt.Errorf("save standings %s: %w", rec.Key(), err)
		}
	}
	return []standing.Record{home, away}, nil
}

// lockStanding reads a record for update, creating the zero record for a
// team that joined its group after fixtures were generated.
func lockStanding(ctx context.Context, repos store.Repositories, key standing.Key) (standing.Record, error) {
	rec, ok, err := repos.Standings.Lock(ctx, key)
	if err != nil {
		return standing.Record{}, fmt.Errorf("lock standings %s: %w", key, err)
	}
	if ok {
		return rec, nil
	}
	if _, err := repos.Standings.UpsertZero(ctx, key); err != nil {
		return standing.Record{}, fmt.Errorf("init standings %s: %w", key, err)
	}
	rec, ok, err = repos.Standings.Lock(ctx, key)
	if err != nil {
		return standing.Record{}, fmt.Errorf("lock standings %s: %w", key, err)
	}
	if !ok {
		return standing.Record{}, fmt.Errorf("%w: record %s vanished after init", standing.ErrInconsistentWrite, key)
	}
	return rec, nil
}
