package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/domain/player"
	qb "github.com/riskibarqy/league-engine/internal/platform/querybuilder"
)

type PlayerRepository struct {
	db sqlx.ExtContext
}

func (r *PlayerRepository) GetByID(ctx context.Context, playerID string) (player.Player, bool, error) {
	query, args, err := qb.Select("*").From("players").
		Where(qb.Eq("public_id", playerID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build get player query: %w", err)
	}

	var row playerTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("get player %s: %w", playerID, err)
	}
	return playerFromRow(row), true, nil
}

func (r *PlayerRepository) ListByTeams(ctx context.Context, teamIDs []string) ([]player.Player, error) {
	if len(teamIDs) == 0 {
		return []player.Player{}, nil
	}

	query, args, err := qb.Select("*").From("players").
		Where(qb.InValues("team_public_id", teamIDs)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select players by teams query: %w", err)
	}

	var rows []playerTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select players by teams: %w", err)
	}

	out := make([]player.Player, 0, len(rows))
	for _, row := range rows {
		out = append(out, playerFromRow(row))
	}
	return out, nil
}

func (r *PlayerRepository) UpdateStatus(ctx context.Context, playerID string, status player.Status) error {
	query, args, err := qb.Update("players").
		Set("status", string(status)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", playerID)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update player status query: %w", err)
	}

	n, err := execAffected(ctx, r.db, query, args...)
	if err != nil {
		return fmt.Errorf("update player %s status: %w", playerID, err)
	}
	if n != 1 {
		return fmt.Errorf("update player %s status: player not found", playerID)
	}
	return nil
}

func playerFromRow(row playerTableModel) player.Player {
	return player.Player{
		ID:     row.PublicID,
		TeamID: row.TeamID,
		Name:   row.Name,
		Number: row.Number,
		Status: player.Status(row.Status),
	}
}
