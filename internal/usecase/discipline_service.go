package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
)

type IngestEventInput struct {
	MatchID  int64
	PlayerID string
	Type     discipline.EventType
	Minute   int
}

// IngestEventResult carries the stored event, the suspension it triggered if
// any, and for a match end event the finalization result.
type IngestEventResult struct {
	Event      discipline.Event
	Suspension *discipline.Suspension
	// NotStacked is set when a card would have suspended a player who is
	// already serving a suspension.
	NotStacked bool
	Result     *MatchResult
}

type ExcludedPlayer struct {
	Player        player.Player
	SuspensionID  int64
	OriginMatchID int64
}

type TeamEligibility struct {
	TeamID   string
	Eligible []player.Player
	Excluded []ExcludedPlayer
}

type Eligibility struct {
	MatchID            int64
	Teams              []TeamEligibility
	ClearedSuspensions []discipline.Suspension
}

// EligiblePlayers flattens the eligible players of both teams.
func (e Eligibility) EligiblePlayers() []player.Player {
	var out []player.Player
	for _, team := range e.Teams {
		out = append(out, team.Eligible...)
	}
	return out
}

type DisciplineService struct {
	tx        store.TxRunner
	settings  Settings
	applier   resultApplier
	publisher EventPublisher
	metrics   *metrics.Recorder
	logger    *logging.Logger
	now       func() time.Time
}

func NewDisciplineService(tx store.TxRunner, settings Settings, publisher EventPublisher, recorder *metrics.Recorder, logger *logging.Logger) *DisciplineService {
	if logger == nil {
		logger = logging.Default()
	}
	if publisher == nil {
		publisher = noopPublisher{}
	}

	return &DisciplineService{
		tx:        tx,
		settings:  settings,
		applier:   resultApplier{settings: settings},
		publisher: publisher,
		metrics:   recorder,
		logger:    logger,
		now:       time.Now,
	}
}

// IngestEvent records one in-match event and applies its disciplinary
// consequences in the same transaction.
func (s *DisciplineService) IngestEvent(ctx context.Context, input IngestEventInput) (IngestEventResult, error) {
	input.PlayerID = strings.TrimSpace(input.PlayerID)
	ctx, span := startUsecaseSpan(ctx, "usecase.DisciplineService.IngestEvent",
		attribute.Int64("match.id", input.MatchID),
		attribute.String("event.type", string(input.Type)),
	)
	defer span.End()

	if input.MatchID <= 0 {
		return IngestEventResult{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}
	if _, err := discipline.ParseEventType(string(input.Type)); err != nil {
		return IngestEventResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if input.Type.IsPlayerEvent() && input.PlayerID == "" {
		return IngestEventResult{}, fmt.Errorf("%w: player id is required for %s", ErrInvalidInput, input.Type)
	}
	if input.Minute < 0 {
		return IngestEventResult{}, fmt.Errorf("%w: minute must be >= 0", ErrInvalidInput)
	}

	var result IngestEventResult
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		m, t, err := loadMatch(ctx, repos, input.MatchID)
		if err != nil {
			return err
		}
		if m.Status.IsTerminal() {
			return fmt.Errorf("%w: match=%d status=%s", match.ErrAlreadyTerminal, m.ID, m.Status)
		}
		if m.IsBye() {
			return fmt.Errorf("%w: match %d has no opponent", ErrInvalidInput, m.ID)
		}

		if input.Type == discipline.EventMatchEnd {
			result, err = s.ingestMatchEnd(ctx, repos, m, t, input)
			return err
		}
		result, err = s.ingestPlayerEvent(ctx, repos, m, t, input)
		return err
	})
	if err != nil {
		recordSpanError(span, err)
		s.metrics.EventIngested(string(input.Type), "rejected")
		s.logger.WarnContext(ctx, "match event rejected",
			"match_id", input.MatchID,
			"player_id", input.PlayerID,
			"type", input.Type,
			"reason", ReasonCode(err),
			"error", err,
		)
		return IngestEventResult{}, err
	}

	s.metrics.EventIngested(string(input.Type), "accepted")
	s.logger.InfoContext(ctx, "match event ingested", "event_id", result.Event.ID, "match_id", input.MatchID, "player_id", input.PlayerID, "type", input.Type)
	if sus := result.Suspension; sus != nil {
		s.metrics.SuspensionCreated(string(sus.Reason))
		s.logger.InfoContext(ctx, "suspension created",
			"suspension_id", sus.ID,
			"player_id", sus.PlayerID,
			"origin_match_id", sus.OriginMatchID,
			"reason", sus.Reason,
			"sanction_duration", sus.SanctionDuration,
		)
		s.publisher.Publish(ctx, dispatch.TopicSuspensionCreated, sus.PlayerID, map[string]any{
			"suspension_id":     sus.ID,
			"tournament_id":     sus.TournamentID,
			"player_id":         sus.PlayerID,
			"team_id":           sus.TeamID,
			"origin_match_id":   sus.OriginMatchID,
			"reason":            sus.Reason,
			"sanction_duration": sus.SanctionDuration,
		})
	}
	if result.NotStacked {
		s.logger.InfoContext(ctx, "card not stacked on active suspension", "player_id", input.PlayerID, "match_id", input.MatchID)
	}
	if result.Result != nil {
		announceResult(ctx, *result.Result, s.publisher, s.metrics, s.logger)
	}
	return result, nil
}

func (s *DisciplineService) ingestPlayerEvent(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament, input IngestEventInput) (IngestEventResult, error) {
	p, exists, err := repos.Players.GetByID(ctx, input.PlayerID)
	if err != nil {
		return IngestEventResult{}, fmt.Errorf("get player: %w", err)
	}
	if !exists {
		return IngestEventResult{}, fmt.Errorf("%w: player=%s", ErrNotFound, input.PlayerID)
	}
	if !m.Involves(p.TeamID) {
		return IngestEventResult{}, fmt.Errorf("%w: player %s does not play for a team in match %d", ErrInvalidInput, p.ID, m.ID)
	}

	active, err := repos.Suspensions.ListActiveByPlayers(ctx, t.ID, []string{p.ID})
	if err != nil {
		return IngestEventResult{}, fmt.Errorf("list active suspensions: %w", err)
	}
	if discipline.Excluded(p.Status == player.StatusSuspended, m.ID, active) {
		return IngestEventResult{}, fmt.Errorf("%w: player=%s is suspended", discipline.ErrPlayerAlreadySanctioned, p.ID)
	}

	matchEvents, err := repos.Events.ListByMatch(ctx, m.ID)
	if err != nil {
		return IngestEventResult{}, fmt.Errorf("list match events: %w", err)
	}
	if discipline.SentOff(matchEvents, p.ID) {
		return IngestEventResult{}, fmt.Errorf("%w: player=%s was sent off in match %d", discipline.ErrPlayerAlreadySanctioned, p.ID, m.ID)
	}

	accumulated := 0
	if input.Type == discipline.EventYellowCard {
		accumulated, err = yellowsSinceLastSuspension(ctx, repos, t.ID, p.ID)
		if err != nil {
			return IngestEventResult{}, err
		}
	}

	event, err := s.storeEvent(ctx, repos, m, p.ID, p.TeamID, input)
	if err != nil {
		return IngestEventResult{}, err
	}
	if err := s.markInProgress(ctx, repos, m); err != nil {
		return IngestEventResult{}, err
	}

	result := IngestEventResult{Event: event}
	reason, triggered := discipline.Trigger(event, ownEvents(matchEvents, p.ID), accumulated, s.settings.yellowThreshold(t))
	if !triggered {
		return result, nil
	}
	if len(active) > 0 {
		result.NotStacked = true
		return result, nil
	}

	suspensionID, err := repos.Suspensions.NextID(ctx)
	if err != nil {
		return IngestEventResult{}, fmt.Errorf("next suspension id: %w", err)
	}
	sus := discipline.Suspension{
		ID:               suspensionID,
		TournamentID:     t.ID,
		PlayerID:         p.ID,
		TeamID:           p.TeamID,
		OriginMatchID:    m.ID,
		TriggerEventID:   event.ID,
		SanctionDuration: s.settings.sanctionDuration(t),
		Status:           discipline.SuspensionActive,
		Reason:           reason,
		CreatedAt:        event.OccurredAt,
	}
	if err := repos.Suspensions.Create(ctx, sus); err != nil {
		return IngestEventResult{}, fmt.Errorf("create suspension: %w", err)
	}
	if err := repos.Players.UpdateStatus(ctx, p.ID, player.StatusSuspended); err != nil {
		return IngestEventResult{}, fmt.Errorf("suspend player: %w", err)
	}
	result.Suspension = &sus
	return result, nil
}

// ingestMatchEnd stores the end event and finalizes the match with the score
// tallied from its goal events.
func (s *DisciplineService) ingestMatchEnd(ctx context.Context, repos store.Repositories, m match.Match, t tournament.Tournament, input IngestEventInput) (IngestEventResult, error) {
	matchEvents, err := repos.Events.ListByMatch(ctx, m.ID)
	if err != nil {
		return IngestEventResult{}, fmt.Errorf("list match events: %w", err)
	}

	event, err := s.storeEvent(ctx, repos, m, "", "", input)
	if err != nil {
		return IngestEventResult{}, err
	}

	score := tallyScore(m, matchEvents)
	finished, err := s.applier.finish(ctx, repos, m, t, finishRequest{
		to:    match.StatusFinished,
		score: score,
		at:    event.OccurredAt,
	})
	if err != nil {
		return IngestEventResult{}, err
	}
	if finished.Outcome != OutcomeApplied {
		return IngestEventResult{}, fmt.Errorf("%w: match=%d", match.ErrAlreadyTerminal, m.ID)
	}
	return IngestEventResult{Event: event, Result: &finished}, nil
}

func (s *DisciplineService) storeEvent(ctx context.Context, repos store.Repositories, m match.Match, playerID, teamID string, input IngestEventInput) (discipline.Event, error) {
	eventID, err := repos.Events.NextID(ctx)
	if err != nil {
		return discipline.Event{}, fmt.Errorf("next event id: %w", err)
	}
	event := discipline.Event{
		ID:           eventID,
		MatchID:      m.ID,
		TournamentID: m.TournamentID,
		PlayerID:     playerID,
		TeamID:       teamID,
		Type:         input.Type,
		Minute:       input.Minute,
		OccurredAt:   s.now().UTC(),
	}
	if err := repos.Events.Create(ctx, event); err != nil {
		return discipline.Event{}, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

func (s *DisciplineService) markInProgress(ctx context.Context, repos store.Repositories, m match.Match) error {
	if m.Status != match.StatusScheduled {
		return nil
	}
	if _, err := repos.Matches.Transition(ctx, match.Transition{
		MatchID: m.ID,
		From:    []match.Status{match.StatusScheduled},
		To:      match.StatusInProgress,
	}); err != nil {
		return fmt.Errorf("start match %d: %w", m.ID, err)
	}
	return nil
}

// ResolveEligibility runs the suspension sweep for both teams of a match and
// splits their players into eligible and excluded.
func (s *DisciplineService) ResolveEligibility(ctx context.Context, matchID int64) (Eligibility, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DisciplineService.ResolveEligibility", attribute.Int64("match.id", matchID))
	defer span.End()

	if matchID <= 0 {
		return Eligibility{}, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	var out Eligibility
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		m, t, err := loadMatch(ctx, repos, matchID)
		if err != nil {
			return err
		}
		teamIDs := []string{m.HomeTeamID}
		if !m.IsBye() {
			teamIDs = append(teamIDs, m.AwayTeamID)
		}

		cleared, err := sweepSuspensions(ctx, repos, t.ID, teamIDs, s.now().UTC())
		if err != nil {
			return fmt.Errorf("sweep suspensions: %w", err)
		}

		players, err := repos.Players.ListByTeams(ctx, teamIDs)
		if err != nil {
			return fmt.Errorf("list players: %w", err)
		}
		playerIDs := make([]string, 0, len(players))
		for _, p := range players {
			playerIDs = append(playerIDs, p.ID)
		}
		active, err := repos.Suspensions.ListActiveByPlayers(ctx, t.ID, playerIDs)
		if err != nil {
			return fmt.Errorf("list active suspensions: %w", err)
		}
		byPlayer := make(map[string][]discipline.Suspension, len(active))
		for _, sus := range active {
			byPlayer[sus.PlayerID] = append(byPlayer[sus.PlayerID], sus)
		}

		out = Eligibility{MatchID: m.ID, ClearedSuspensions: cleared}
		for _, teamID := range teamIDs {
			team := TeamEligibility{TeamID: teamID, Eligible: []player.Player{}, Excluded: []ExcludedPlayer{}}
			for _, p := range players {
				if p.TeamID != teamID {
					continue
				}
				suspensions := byPlayer[p.ID]
				if !discipline.Excluded(p.Status == player.StatusSuspended, m.ID, suspensions) {
					team.Eligible = append(team.Eligible, p)
					continue
				}
				excluded := ExcludedPlayer{Player: p}
				if len(suspensions) > 0 {
					excluded.SuspensionID = suspensions[0].ID
					excluded.OriginMatchID = suspensions[0].OriginMatchID
				}
				team.Excluded = append(team.Excluded, excluded)
			}
			out.Teams = append(out.Teams, team)
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		if !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrInvalidInput) {
			s.logger.ErrorContext(ctx, "resolve eligibility failed", "match_id", matchID, "error", err)
		}
		return Eligibility{}, err
	}

	s.metrics.SuspensionsServed(len(out.ClearedSuspensions))
	for _, sus := range out.ClearedSuspensions {
		s.logger.InfoContext(ctx, "suspension served", "suspension_id", sus.ID, "player_id", sus.PlayerID, "tournament_id", sus.TournamentID)
		s.publisher.Publish(ctx, dispatch.TopicSuspensionServed, sus.PlayerID, map[string]any{
			"suspension_id": sus.ID,
			"player_id":     sus.PlayerID,
			"tournament_id": sus.TournamentID,
		})
	}
	return out, nil
}

func yellowsSinceLastSuspension(ctx context.Context, repos store.Repositories, tournamentID, playerID string) (int, error) {
	history, err := repos.Suspensions.ListByPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return 0, fmt.Errorf("list suspensions: %w", err)
	}
	var lastTrigger int64
	for _, sus := range history {
		if sus.TriggerEventID > lastTrigger {
			lastTrigger = sus.TriggerEventID
		}
	}

	events, err := repos.Events.ListByPlayer(ctx, tournamentID, playerID)
	if err != nil {
		return 0, fmt.Errorf("list player events: %w", err)
	}
	return discipline.YellowsSince(events, lastTrigger), nil
}

func ownEvents(events []discipline.Event, playerID string) []discipline.Event {
	out := make([]discipline.Event, 0, len(events))
	for _, ev := range events {
		if ev.PlayerID == playerID {
			out = append(out, ev)
		}
	}
	return out
}

func tallyScore(m match.Match, events []discipline.Event) match.Score {
	var score match.Score
	for _, ev := range events {
		if ev.Type != discipline.EventGoal {
			continue
		}
		switch ev.TeamID {
		case m.HomeTeamID:
			score.Home++
		case m.AwayTeamID:
			score.Away++
		}
	}
	return score
}
