package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"

	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	qb "github.com/riskibarqy/league-engine/internal/platform/querybuilder"
)

// matchDetails is the JSONB payload of a match row.
type matchDetails struct {
	Notes     []string       `json:"notes,omitempty"`
	HomeBonus standing.Bonus `json:"home_bonus"`
	AwayBonus standing.Bonus `json:"away_bonus"`
}

type MatchRepository struct {
	db sqlx.ExtContext
}

func (r *MatchRepository) GetByID(ctx context.Context, matchID int64) (match.Match, bool, error) {
	return r.get(ctx, matchID, false)
}

func (r *MatchRepository) Lock(ctx context.Context, matchID int64) (match.Match, bool, error) {
	return r.get(ctx, matchID, true)
}

func (r *MatchRepository) get(ctx context.Context, matchID int64, lock bool) (match.Match, bool, error) {
	builder := qb.Select("*").From("matches").
		Where(qb.Eq("id", matchID)).
		Limit(1)
	if lock {
		builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return match.Match{}, false, fmt.Errorf("build get match query: %w", err)
	}

	var row matchTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return match.Match{}, false, nil
		}
		return match.Match{}, false, fmt.Errorf("get match %d: %w", matchID, err)
	}
	return matchFromRow(row)
}

func (r *MatchRepository) ListByTournament(ctx context.Context, tournamentID string) ([]match.Match, error) {
	return r.list(ctx, qb.Eq("tournament_public_id", tournamentID))
}

func (r *MatchRepository) ListByTeam(ctx context.Context, tournamentID, teamID string) ([]match.Match, error) {
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.Or(qb.Eq("home_team_public_id", teamID), qb.Eq("away_team_public_id", teamID)),
	)
}

func (r *MatchRepository) list(ctx context.Context, conditions ...qb.Condition) ([]match.Match, error) {
	query, args, err := qb.Select("*").From("matches").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list matches query: %w", err)
	}

	var rows []matchTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}

	out := make([]match.Match, 0, len(rows))
	for _, row := range rows {
		m, _, err := matchFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MatchRepository) NextID(ctx context.Context) (int64, error) {
	return nextval(ctx, r.db, "match_id_seq")
}

func (r *MatchRepository) Create(ctx context.Context, matches []match.Match) error {
	if len(matches) == 0 {
		return nil
	}

	rows := make([]matchInsertModel, 0, len(matches))
	for _, m := range matches {
		row, err := matchInsertFromDomain(m)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	query, args, err := qb.InsertModels("matches", rows, "")
	if err != nil {
		return fmt.Errorf("build insert matches query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert %d matches: %w", len(matches), err)
	}
	return nil
}

// Transition appends notes and replaces bonuses and score in one guarded
// update. The status predicate makes concurrent transitions race safely: the
// loser sees zero affected rows.
func (r *MatchRepository) Transition(ctx context.Context, t match.Transition) (bool, error) {
	notes, err := jsoniter.MarshalToString(nonNilNotes(t.Notes))
	if err != nil {
		return false, fmt.Errorf("marshal match notes: %w", err)
	}
	homeBonus, err := jsoniter.MarshalToString(t.HomeBonus)
	if err != nil {
		return false, fmt.Errorf("marshal home bonus: %w", err)
	}
	awayBonus, err := jsoniter.MarshalToString(t.AwayBonus)
	if err != nil {
		return false, fmt.Errorf("marshal away bonus: %w", err)
	}

	builder := qb.Update("matches").
		Set("status", string(t.To)).
		SetExpr("details", "jsonb_build_object('notes', COALESCE(details->'notes', '[]'::jsonb) || ?::jsonb, 'home_bonus', ?::jsonb, 'away_bonus', ?::jsonb)", notes, homeBonus, awayBonus).
		SetExpr("updated_at", "NOW()")
	if t.Score != nil {
		builder.Set("home_goals", t.Score.Home).Set("away_goals", t.Score.Away)
	}
	if t.To.IsTerminal() && !t.At.IsZero() {
		builder.Set("finished_at", t.At.UTC())
	}

	statuses := make([]string, 0, len(t.From))
	for _, s := range t.From {
		statuses = append(statuses, string(s))
	}
	query, args, err := builder.
		Where(
			qb.Eq("id", t.MatchID),
			qb.InValues("status", statuses),
		).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build transition match query: %w", err)
	}

	n, err := execAffected(ctx, r.db, query, args...)
	if err != nil {
		return false, fmt.Errorf("transition match %d to %s: %w", t.MatchID, t.To, err)
	}
	return n == 1, nil
}

func nonNilNotes(notes []string) []string {
	if notes == nil {
		return []string{}
	}
	return notes
}

func matchFromRow(row matchTableModel) (match.Match, bool, error) {
	var details matchDetails
	if len(row.Details) > 0 {
		if err := jsoniter.Unmarshal(row.Details, &details); err != nil {
			return match.Match{}, false, fmt.Errorf("decode match %d details: %w", row.ID, err)
		}
	}

	m := match.Match{
		ID:           row.ID,
		TournamentID: row.TournamentID,
		GroupID:      row.GroupID,
		HomeTeamID:   row.HomeTeamID,
		AwayTeamID:   row.AwayTeamID,
		Round:        row.Round,
		Phase:        row.Phase,
		ScheduledAt:  nullTimeToTime(row.ScheduledAt),
		Venue:        row.Venue,
		Status:       match.Status(row.Status),
		Notes:        details.Notes,
		HomeBonus:    details.HomeBonus,
		AwayBonus:    details.AwayBonus,
		FinishedAt:   nullTimeToTimePtr(row.FinishedAt),
	}
	if row.HomeGoals.Valid && row.AwayGoals.Valid {
		m.Score = &match.Score{Home: int(row.HomeGoals.Int64), Away: int(row.AwayGoals.Int64)}
	}
	return m, true, nil
}

func matchInsertFromDomain(m match.Match) (matchInsertModel, error) {
	details, err := jsoniter.MarshalToString(matchDetails{
		Notes:     m.Notes,
		HomeBonus: m.HomeBonus,
		AwayBonus: m.AwayBonus,
	})
	if err != nil {
		return matchInsertModel{}, fmt.Errorf("marshal match %d details: %w", m.ID, err)
	}

	row := matchInsertModel{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		GroupID:      m.GroupID,
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		Round:        m.Round,
		Phase:        m.Phase,
		ScheduledAt:  timeToNull(m.ScheduledAt),
		Venue:        m.Venue,
		Status:       string(m.Status),
		Details:      details,
	}
	if m.Score != nil {
		row.HomeGoals = sql.NullInt64{Int64: int64(m.Score.Home), Valid: true}
		row.AwayGoals = sql.NullInt64{Int64: int64(m.Score.Away), Valid: true}
	}
	if m.FinishedAt != nil {
		row.FinishedAt = timeToNull(*m.FinishedAt)
	}
	return row, nil
}
