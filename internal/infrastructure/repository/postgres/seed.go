package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the demo tournaments into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM tournaments`); err != nil {
		return fmt.Errorf("count tournaments for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	seed := memory.DemoSeed()
	for _, t := range seed.Tournaments {
		if err := seedExec(ctx, tx, "tournament "+t.ID, `
INSERT INTO tournaments (public_id, name, category, classification_level, round_trips, sanction_duration, yellow_threshold, starts_at, round_interval_seconds)
VALUES (:public_id, :name, :category, :classification_level, :round_trips, :sanction_duration, :yellow_threshold, :starts_at, :round_interval_seconds)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":              t.ID,
			"name":                   t.Name,
			"category":               t.Category,
			"classification_level":   t.ClassificationLevel,
			"round_trips":            t.RoundTrips,
			"sanction_duration":      t.SanctionDuration,
			"yellow_threshold":       t.YellowThreshold,
			"starts_at":              timeToNull(t.StartsAt),
			"round_interval_seconds": int64(t.RoundInterval.Seconds()),
		}); err != nil {
			return err
		}
	}

	for _, g := range seed.Groups {
		if err := seedExec(ctx, tx, "group "+g.ID, `
INSERT INTO tournament_groups (public_id, tournament_public_id, name)
VALUES (:public_id, :tournament_public_id, :name)
ON CONFLICT (tournament_public_id, public_id) DO NOTHING`, map[string]any{
			"public_id":            g.ID,
			"tournament_public_id": g.TournamentID,
			"name":                 g.Name,
		}); err != nil {
			return err
		}

		for i, teamID := range g.TeamIDs {
			if err := seedExec(ctx, tx, "group team "+teamID, `
INSERT INTO group_teams (tournament_public_id, group_public_id, team_public_id, position)
VALUES (:tournament_public_id, :group_public_id, :team_public_id, :position)
ON CONFLICT DO NOTHING`, map[string]any{
				"tournament_public_id": g.TournamentID,
				"group_public_id":      g.ID,
				"team_public_id":       teamID,
				"position":             i,
			}); err != nil {
				return err
			}
		}
	}

	for _, p := range seed.Players {
		if err := seedExec(ctx, tx, "player "+p.ID, `
INSERT INTO players (public_id, team_public_id, name, shirt_number, status)
VALUES (:public_id, :team_public_id, :name, :shirt_number, :status)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
			"public_id":      p.ID,
			"team_public_id": p.TeamID,
			"name":           p.Name,
			"shirt_number":   p.Number,
			"status":         string(p.Status),
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}

	return nil
}

func seedExec(ctx context.Context, tx *sqlx.Tx, label, query string, arg map[string]any) error {
	sqlQuery, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind seed %s query: %w", label, err)
	}
	sqlQuery = tx.Rebind(sqlQuery)
	if _, err := tx.ExecContext(ctx, sqlQuery, args...); err != nil {
		return fmt.Errorf("seed %s: %w", label, err)
	}
	return nil
}
