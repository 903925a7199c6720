package tournament

import (
	"fmt"
	"time"
)

// Tournament is one competition with its own standings, fixtures and sanctions.
type Tournament struct {
	ID   string
	Name string
	// Category selects the scoring scheme from the catalog.
	Category string
	// ClassificationLevel is the depth of the knockout phase (1 = final only).
	ClassificationLevel int
	// RoundTrips is 1 for a single round robin and 2 for home and away.
	RoundTrips       int
	SanctionDuration int
	YellowThreshold  int
	StartsAt         time.Time
	RoundInterval    time.Duration
}

func (t Tournament) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("tournament id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("tournament name is required")
	}
	if t.RoundTrips < 1 || t.RoundTrips > 2 {
		return fmt.Errorf("tournament round trips must be 1 or 2, got %d", t.RoundTrips)
	}
	if t.SanctionDuration < 0 {
		return fmt.Errorf("tournament sanction duration must be >= 0")
	}
	if t.YellowThreshold < 0 {
		return fmt.Errorf("tournament yellow threshold must be >= 0")
	}
	if t.RoundInterval < 0 {
		return fmt.Errorf("tournament round interval must be >= 0")
	}

	return nil
}

// RoundDate returns the kickoff of a generated round, or the zero time when
// the tournament has no calendar.
func (t Tournament) RoundDate(round int) time.Time {
	if t.StartsAt.IsZero() || round < 1 {
		return time.Time{}
	}
	return t.StartsAt.Add(time.Duration(round-1) * t.RoundInterval)
}

// Group is a round-robin subdivision. TeamIDs order seeds the fixture rotation.
type Group struct {
	ID           string
	TournamentID string
	Name         string
	TeamIDs      []string
}

func (g Group) Validate() error {
	if g.ID == "" {
		return fmt.Errorf("group id is required")
	}
	if g.TournamentID == "" {
		return fmt.Errorf("group tournament id is required")
	}

	return nil
}

func (g Group) HasTeam(teamID string) bool {
	for _, id := range g.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}
