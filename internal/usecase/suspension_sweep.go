package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/store"
)

// sweepSuspensions resolves the active suspensions of the players on teamIDs.
// A suspension is served once its player has sat out SanctionDuration
// finished team matches after the origin match. Players left without any
// active suspension get their status back.
func sweepSuspensions(ctx context.Context, repos store.Repositories, tournamentID string, teamIDs []string, now time.Time) ([]discipline.Suspension, error) {
	players, err := repos.Players.ListByTeams(ctx, teamIDs)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	if len(players) == 0 {
		return nil, nil
	}

	playerIDs := make([]string, 0, len(players))
	for _, p := range players {
		playerIDs = append(playerIDs, p.ID)
	}
	active, err := repos.Suspensions.ListActiveByPlayers(ctx, tournamentID, playerIDs)
	if err != nil {
		return nil, fmt.Errorf("list active suspensions: %w", err)
	}

	teamMatches := make(map[string][]match.Match)
	served := make([]discipline.Suspension, 0)
	for _, s := range active {
		origin, ok, err := repos.Matches.GetByID(ctx, s.OriginMatchID)
		if err != nil {
			return nil, fmt.Errorf("get origin match %d: %w", s.OriginMatchID, err)
		}
		if !ok {
			return nil, fmt.Errorf("suspension %d references missing match %d", s.ID, s.OriginMatchID)
		}

		matches, cached := teamMatches[s.TeamID]
		if !cached {
			matches, err = repos.Matches.ListByTeam(ctx, tournamentID, s.TeamID)
			if err != nil {
				return nil, fmt.Errorf("list team matches: %w", err)
			}
			teamMatches[s.TeamID] = matches
		}

		candidates := discipline.Candidates(origin, matches)
		if len(candidates) == 0 {
			continue
		}
		ids := make([]int64, 0, len(candidates))
		for _, m := range candidates {
			ids = append(ids, m.ID)
		}
		participation, err := repos.Events.CountByPlayerInMatches(ctx, s.PlayerID, ids)
		if err != nil {
			return nil, fmt.Errorf("count participation: %w", err)
		}
		if _, done := discipline.Missed(candidates, participation, s.SanctionDuration); !done {
			continue
		}

		marked, err := repos.Suspensions.MarkServed(ctx, s.ID, now)
		if err != nil {
			return nil, fmt.Errorf("mark suspension %d served: %w", s.ID, err)
		}
		if marked {
			s.Status = discipline.SuspensionServed
			servedAt := now
			s.ServedAt = &servedAt
			served = append(served, s)
		}
	}

	for _, p := range players {
		if p.Status != player.StatusSuspended {
			continue
		}
		remaining, err := repos.Suspensions.CountActiveByPlayer(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("count active suspensions: %w", err)
		}
		if remaining > 0 {
			continue
		}
		if err := repos.Players.UpdateStatus(ctx, p.ID, player.StatusActive); err != nil {
			return nil, fmt.Errorf("reinstate player %s: %w", p.ID, err)
		}
	}

	return served, nil
}
