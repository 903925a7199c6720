package memory

import (
	"fmt"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

const (
	TournamentIDSpringCup = "spring-cup-2026"
	TournamentIDYouthCup  = "youth-cup-2026"
)

// DemoSeed is the data the memory driver starts with.
func DemoSeed() Seed {
	return Seed{
		Tournaments: SeedTournaments(),
		Groups:      SeedGroups(),
		Players:     SeedPlayers(),
	}
}

func SeedTournaments() []tournament.Tournament {
	return []tournament.Tournament{
		{
			ID:                  TournamentIDSpringCup,
			Name:                "Spring Cup 2026",
			Category:            "senior",
			ClassificationLevel: 2,
			RoundTrips:          1,
			SanctionDuration:    1,
			YellowThreshold:     2,
			StartsAt:            time.Date(2026, 3, 7, 15, 0, 0, 0, time.UTC),
			RoundInterval:       7 * 24 * time.Hour,
		},
		{
			ID:                  TournamentIDYouthCup,
			Name:                "Youth Cup 2026",
			Category:            "youth",
			ClassificationLevel: 1,
			RoundTrips:          2,
			SanctionDuration:    1,
			YellowThreshold:     3,
		},
	}
}

func SeedGroups() []tournament.Group {
	return []tournament.Group{
		{ID: "group-a", TournamentID: TournamentIDSpringCup, Name: "Group A", TeamIDs: []string{"harbor-fc", "northside", "old-mill", "riverside"}},
		{ID: "group-b", TournamentID: TournamentIDSpringCup, Name: "Group B", TeamIDs: []string{"granite", "lakeview", "station-rd", "westend", "hilltop"}},
		{ID: "group-y", TournamentID: TournamentIDYouthCup, Name: "Youth", TeamIDs: []string{"harbor-u15", "northside-u15", "riverside-u15"}},
	}
}

// SeedPlayers registers three players per seeded team.
func SeedPlayers() []player.Player {
	var out []player.Player
	for _, g := range SeedGroups() {
		for _, team := range g.TeamIDs {
			for n := 1; n <= 3; n++ {
				out = append(out, player.Player{
					ID:     fmt.Sprintf("%s-p%d", team, n),
					TeamID: team,
					Name:   fmt.Sprintf("%s #%d", team, n),
					Number: n,
					Status: player.StatusActive,
				})
			}
		}
	}
	return out
}
