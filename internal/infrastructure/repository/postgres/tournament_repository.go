package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	qb "github.com/riskibarqy/league-engine/internal/platform/querybuilder"
)

type TournamentRepository struct {
	db sqlx.ExtContext
}

func (r *TournamentRepository) List(ctx context.Context) ([]tournament.Tournament, error) {
	query, args, err := qb.Select("*").From("tournaments").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list tournaments query: %w", err)
	}

	var rows []tournamentTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tournaments: %w", err)
	}

	out := make([]tournament.Tournament, 0, len(rows))
	for _, row := range rows {
		out = append(out, tournamentFromRow(row))
	}
	return out, nil
}

func (r *TournamentRepository) GetByID(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return r.get(ctx, tournamentID, false)
}

func (r *TournamentRepository) Lock(ctx context.Context, tournamentID string) (tournament.Tournament, bool, error) {
	return r.get(ctx, tournamentID, true)
}

func (r *TournamentRepository) get(ctx context.Context, tournamentID string, lock bool) (tournament.Tournament, bool, error) {
	builder := qb.Select("*").From("tournaments").
		Where(qb.Eq("public_id", tournamentID)).
		Limit(1)
	if lock {
		builder.ForUpdate()
	}
	query, args, err := builder.ToSQL()
	if err != nil {
		return tournament.Tournament{}, false, fmt.Errorf("build get tournament query: %w", err)
	}

	var row tournamentTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Tournament{}, false, nil
		}
		return tournament.Tournament{}, false, fmt.Errorf("get tournament %s: %w", tournamentID, err)
	}
	return tournamentFromRow(row), true, nil
}

func tournamentFromRow(row tournamentTableModel) tournament.Tournament {
	return tournament.Tournament{
		ID:                  row.PublicID,
		Name:                row.Name,
		Category:            row.Category,
		ClassificationLevel: row.ClassificationLevel,
		RoundTrips:          row.RoundTrips,
		SanctionDuration:    row.SanctionDuration,
		YellowThreshold:     row.YellowThreshold,
		StartsAt:            nullTimeToTime(row.StartsAt),
		RoundInterval:       time.Duration(row.RoundIntervalSeconds) * time.Second,
	}
}

type GroupRepository struct {
	db sqlx.ExtContext
}

func (r *GroupRepository) ListByTournament(ctx context.Context, tournamentID string) ([]tournament.Group, error) {
	query, args, err := qb.Select("*").From("tournament_groups").
		Where(qb.Eq("tournament_public_id", tournamentID)).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list groups query: %w", err)
	}

	var rows []groupTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}

	teams, err := r.teamsByGroup(ctx, tournamentID, nil)
	if err != nil {
		return nil, err
	}

	out := make([]tournament.Group, 0, len(rows))
	for _, row := range rows {
		out = append(out, groupFromRow(row, teams[row.PublicID]))
	}
	return out, nil
}

func (r *GroupRepository) GetByID(ctx context.Context, tournamentID, groupID string) (tournament.Group, bool, error) {
	query, args, err := qb.Select("*").From("tournament_groups").
		Where(
			qb.Eq("tournament_public_id", tournamentID),
			qb.Eq("public_id", groupID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return tournament.Group{}, false, fmt.Errorf("build get group query: %w", err)
	}

	var row groupTableModel
	if err := sqlx.GetContext(ctx, r.db, &row, query, args...); err != nil {
		if isNotFound(err) {
			return tournament.Group{}, false, nil
		}
		return tournament.Group{}, false, fmt.Errorf("get group %s/%s: %w", tournamentID, groupID, err)
	}

	teams, err := r.teamsByGroup(ctx, tournamentID, []string{groupID})
	if err != nil {
		return tournament.Group{}, false, err
	}
	return groupFromRow(row, teams[groupID]), true, nil
}

// teamsByGroup loads team membership in seeding order. A nil groupIDs loads
// every group of the tournament.
func (r *GroupRepository) teamsByGroup(ctx context.Context, tournamentID string, groupIDs []string) (map[string][]string, error) {
	conditions := []qb.Condition{qb.Eq("tournament_public_id", tournamentID)}
	if groupIDs != nil {
		conditions = append(conditions, qb.InValues("group_public_id", groupIDs))
	}
	query, args, err := qb.Select("*").From("group_teams").
		Where(conditions...).
		OrderBy("group_public_id", "position", "team_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list group teams query: %w", err)
	}

	var rows []groupTeamTableModel
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list group teams: %w", err)
	}

	out := make(map[string][]string)
	for _, row := range rows {
		out[row.GroupID] = append(out[row.GroupID], row.TeamID)
	}
	return out, nil
}

func groupFromRow(row groupTableModel, teamIDs []string) tournament.Group {
	if teamIDs == nil {
		teamIDs = []string{}
	}
	return tournament.Group{
		ID:           row.PublicID,
		TournamentID: row.TournamentID,
		Name:         row.Name,
		TeamIDs:      teamIDs,
	}
}
