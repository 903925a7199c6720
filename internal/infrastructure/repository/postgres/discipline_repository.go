package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	qb "github.com/riskibarqy/league-engine/internal/platform/querybuilder"
)

const suspensionOneActiveIndex = "suspensions_one_active_idx"

type EventRepository struct {
	db sqlx.ExtContext
}

func (r *EventRepository) NextID(ctx context.Context) (int64, error) {
	return nextval(ctx, r.db, "match_event_id_seq")
}

func (r *EventRepository) Create(ctx context.Context, event discipline.Event) error {
	query, args, err := qb.InsertModel("match_events", eventToRow(event), "")
	if err != nil {
		return fmt.Errorf("build insert event query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert event %d: %w", event.ID, err)
	}
	return nil
}

func (r *EventRepository) ListByMatch(ctx context.Context, matchID int64) ([]discipline.Event, error) {
	return r.list(ctx, qb.Eq("match_id", matchID))
}

func (r *EventRepository) ListByPlayer(ctx context.Context, tournamentID, playerID string) ([]discipline.Event, error) {
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.Eq("player_public_id", playerID),
	)
}

func (r *EventRepository) list(ctx context.Context, conditions ...qb.Condition) ([]discipline.Event, error) {
	query, args, err := qb.Select("*").From("match_events").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list events query: %w", err)
	}

	var rows []eventTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	out := make([]discipline.Event, 0, len(rows))
	for _, row := range rows {
		out = append(out, eventFromRow(row))
	}
	return out, nil
}

func (r *EventRepository) CountByPlayerInMatches(ctx context.Context, playerID string, matchIDs []int64) (map[int64]int, error) {
	out := make(map[int64]int)
	if len(matchIDs) == 0 {
		return out, nil
	}

	query, args, err := qb.Select("match_id", "COUNT(1) AS total").From("match_events").
		Where(
			qb.Eq("player_public_id", playerID),
			qb.InValues("match_id", matchIDs),
		).
		GroupBy("match_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build count events query: %w", err)
	}

	var rows []struct {
		MatchID int64 `db:"match_id"`
		Total   int   `db:"total"`
	}
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("count events of player %s: %w", playerID, err)
	}
	for _, row := range rows {
		out[row.MatchID] = row.Total
	}
	return out, nil
}

type SuspensionRepository struct {
	db sqlx.ExtContext
}

func (r *SuspensionRepository) NextID(ctx context.Context) (int64, error) {
	return nextval(ctx, r.db, "suspension_id_seq")
}

func (r *SuspensionRepository) Create(ctx context.Context, s discipline.Suspension) error {
	query, args, err := qb.InsertModel("suspensions", suspensionToRow(s), "")
	if err != nil {
		return fmt.Errorf("build insert suspension query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err, suspensionOneActiveIndex) {
			return fmt.Errorf("%w: player=%s tournament=%s", discipline.ErrPlayerAlreadySanctioned, s.PlayerID, s.TournamentID)
		}
		return fmt.Errorf("insert suspension %d: %w", s.ID, err)
	}
	return nil
}

func (r *SuspensionRepository) GetActive(ctx context.Context, tournamentID, playerID string) (discipline.Suspension, bool, error) {
	items, err := r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.Eq("player_public_id", playerID),
		qb.EqLiteral("status", string(discipline.SuspensionActive)),
	)
	if err != nil || len(items) == 0 {
		return discipline.Suspension{}, false, err
	}
	return items[0], true, nil
}

func (r *SuspensionRepository) ListActiveByTournament(ctx context.Context, tournamentID string) ([]discipline.Suspension, error) {
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.EqLiteral("status", string(discipline.SuspensionActive)),
	)
}

func (r *SuspensionRepository) ListActiveByPlayers(ctx context.Context, tournamentID string, playerIDs []string) ([]discipline.Suspension, error) {
	if len(playerIDs) == 0 {
		return []discipline.Suspension{}, nil
	}
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.InValues("player_public_id", playerIDs),
		qb.EqLiteral("status", string(discipline.SuspensionActive)),
	)
}

func (r *SuspensionRepository) ListByPlayer(ctx context.Context, tournamentID, playerID string) ([]discipline.Suspension, error) {
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.Eq("player_public_id", playerID),
	)
}

func (r *SuspensionRepository) CountActiveByPlayer(ctx context.Context, playerID string) (int, error) {
	query, args, err := qb.Select("COUNT(1)").From("suspensions").
		Where(
			qb.Eq("player_public_id", playerID),
			qb.EqLiteral("status", string(discipline.SuspensionActive)),
		).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build count active suspensions query: %w", err)
	}

	var count int
	if err := sqlx.GetContext(ctx, r.db, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count active suspensions of player %s: %w", playerID, err)
	}
	return count, nil
}

func (r *SuspensionRepository) MarkServed(ctx context.Context, suspensionID int64, at time.Time) (bool, error) {
	query, args, err := qb.Update("suspensions").
		Set("status", string(discipline.SuspensionServed)).
		Set("served_at", at.UTC()).
		Where(
			qb.Eq("id", suspensionID),
			qb.EqLiteral("status", string(discipline.SuspensionActive)),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build mark suspension served query: %w", err)
	}

	n, err := execAffected(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("mark suspension %d served: %w", suspensionID, err)
	}
	return n == 1, nil
}

func (r *SuspensionRepository) list(ctx context.Context, conditions ...qb.Condition) ([]discipline.Suspension, error) {
	query, args, err := qb.Select("*").From("suspensions").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list suspensions query: %w", err)
	}

	var rows []suspensionTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list suspensions: %w", err)
	}

	out := make([]discipline.Suspension, 0, len(rows))
	for _, row := range rows {
		out = append(out, suspensionFromRow(row))
	}
	return out, nil
}

func eventToRow(e discipline.Event) eventTableModel {
	return eventTableModel{
		ID:           e.ID,
		MatchID:      e.MatchID,
		TournamentID: e.TournamentID,
		PlayerID:     e.PlayerID,
		TeamID:       e.TeamID,
		Type:         string(e.Type),
		Minute:       e.Minute,
		OccurredAt:   e.OccurredAt.UTC(),
	}
}

func eventFromRow(row eventTableModel) discipline.Event {
	return discipline.Event{
		ID:           row.ID,
		MatchID:      row.MatchID,
		TournamentID: row.TournamentID,
		PlayerID:     row.PlayerID,
		TeamID:       row.TeamID,
		Type:         discipline.EventType(row.Type),
		Minute:       row.Minute,
		OccurredAt:   row.OccurredAt.UTC(),
	}
}

func suspensionToRow(s discipline.Suspension) suspensionTableModel {
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	row := suspensionTableModel{
		ID:               s.ID,
		TournamentID:     s.TournamentID,
		PlayerID:         s.PlayerID,
		TeamID:           s.TeamID,
		OriginMatchID:    s.OriginMatchID,
		TriggerEventID:   s.TriggerEventID,
		SanctionDuration: s.SanctionDuration,
		Status:           string(s.Status),
		Reason:           string(s.Reason),
		CreatedAt:        createdAt.UTC(),
	}
	if s.ServedAt != nil {
		row.ServedAt = timeToNull(*s.ServedAt)
	}
	return row
}

func suspensionFromRow(row suspensionTableModel) discipline.Suspension {
	return discipline.Suspension{
		ID:               row.ID,
		TournamentID:     row.TournamentID,
		PlayerID:         row.PlayerID,
		TeamID:           row.TeamID,
		OriginMatchID:    row.OriginMatchID,
		TriggerEventID:   row.TriggerEventID,
		SanctionDuration: row.SanctionDuration,
		Status:           discipline.SuspensionStatus(row.Status),
		Reason:           discipline.Reason(row.Reason),
		CreatedAt:        row.CreatedAt.UTC(),
		ServedAt:         nullTimeToTimePtr(row.ServedAt),
	}
}
