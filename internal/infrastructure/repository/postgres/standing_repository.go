package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	qb "github.com/riskibarqy/league-engine/internal/platform/querybuilder"
)

type StandingRepository struct {
	db sqlx.ExtContext
}

func (r *StandingRepository) Get(ctx context.Context, key standing.Key) (standing.Record, bool, error) {
	return r.get(ctx, key, false)
}

func (r *StandingRepository) Lock(ctx context.Context, key standing.Key) (standing.Record, bool, error) {
	return r.get(ctx, key, true)
}

func (r *StandingRepository) get(ctx context.Context, key standing.Key, lock bool) (standing.Record, bool, error) {
	builder := qb.Select("*").From("standings").
		Where(
			qb.Eq("tournament_public_id", key.TournamentID),
			qb.Eq("group_public_id", key.GroupID),
			qb.Eq("team_public_id", key.TeamID),
		).
		Limit(1)
	if lock {
		builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return standing.Record{}, false, fmt.Errorf("build get standing query: %w", err)
	}

	var row standingTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return standing.Record{}, false, nil
		}
		return standing.Record{}, false, fmt.Errorf("get standing %s: %w", key, err)
	}
	return standingFromRow(row), true, nil
}

func (r *StandingRepository) UpsertZero(ctx context.Context, key standing.Key) (standing.Record, error) {
	query, args, err := qb.InsertModel("standings", standingInsertModel{
		TournamentID: key.TournamentID,
		GroupID:      key.GroupID,
		TeamID:       key.TeamID,
	}, "ON CONFLICT (tournament_public_id, group_public_id, team_public_id) DO NOTHING")
	if err != nil {
		return standing.Record{}, fmt.Errorf("build upsert standing query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return standing.Record{}, fmt.Errorf("upsert standing %s: %w", key, err)
	}

	rec, ok, err := r.Get(ctx, key)
	if err != nil {
		return standing.Record{}, err
	}
	if !ok {
		return standing.Record{}, fmt.Errorf("%w: %s missing after upsert", standing.ErrInconsistentWrite, key)
	}
	return rec, nil
}

func (r *StandingRepository) Save(ctx context.Context, record standing.Record) error {
	key := record.Key()
	query, args, err := qb.Update("standings").
		Set("points", record.Points).
		Set("played", record.Played).
		Set("won", record.Won).
		Set("drawn", record.Drawn).
		Set("lost", record.Lost).
		Set("goals_for", record.GoalsFor).
		Set("goals_against", record.GoalsAgainst).
		Set("goal_difference", record.GoalDifference).
		Set("qualified", record.Qualified).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("tournament_public_id", key.TournamentID),
			qb.Eq("group_public_id", key.GroupID),
			qb.Eq("team_public_id", key.TeamID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build save standing query: %w", err)
	}
	return r.execOne(ctx, key, query, args...)
}

func (r *StandingRepository) SetQualified(ctx context.Context, key standing.Key, qualified bool) error {
	query, args, err := qb.Update("standings").
		Set("qualified", qualified).
		SetExpr("updated_at", "NOW()").
		Where(
			qb.Eq("tournament_public_id", key.TournamentID),
			qb.Eq("group_public_id", key.GroupID),
			qb.Eq("team_public_id", key.TeamID),
		).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build set qualified query: %w", err)
	}
	return r.execOne(ctx, key, query, args...)
}

func (r *StandingRepository) execOne(ctx context.Context, key standing.Key, query string, args ...any) error {
	n, err := execAffected(ctx, r.db, query, args...)
	if isCheckViolation(err) {
		return fmt.Errorf("%w: %s: %v", standing.ErrInconsistentWrite, key, err)
	}
	if err != nil {
		return fmt.Errorf("write standing %s: %w", key, err)
	}
	if n != 1 {
		return fmt.Errorf("%w: %s touched %d rows", standing.ErrInconsistentWrite, key, n)
	}
	return nil
}

func (r *StandingRepository) ListByGroup(ctx context.Context, tournamentID, groupID string) ([]standing.Record, error) {
	return r.list(ctx,
		qb.Eq("tournament_public_id", tournamentID),
		qb.Eq("group_public_id", groupID),
	)
}

func (r *StandingRepository) ListByTournament(ctx context.Context, tournamentID string) ([]standing.Record, error) {
	return r.list(ctx, qb.Eq("tournament_public_id", tournamentID))
}

func (r *StandingRepository) list(ctx context.Context, conditions ...qb.Condition) ([]standing.Record, error) {
	query, args, err := qb.Select("*").From("standings").
		Where(conditions...).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list standings query: %w", err)
	}

	var rows []standingTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list standings: %w", err)
	}

	out := make([]standing.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, standingFromRow(row))
	}
	return out, nil
}

func standingFromRow(row standingTableModel) standing.Record {
	return standing.Record{
		TournamentID:   row.TournamentID,
		GroupID:        row.GroupID,
		TeamID:         row.TeamID,
		Points:         row.Points,
		Played:         row.Played,
		Won:            row.Won,
		Drawn:          row.Drawn,
		Lost:           row.Lost,
		GoalsFor:       row.GoalsFor,
		GoalsAgainst:   row.GoalsAgainst,
		GoalDifference: row.GoalDifference,
		Qualified:      row.Qualified,
	}
}
