package match

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
)

// Status is the lifecycle state of a match.
type Status string

const (
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
	StatusWalkover   Status = "WALKOVER"
)

const (
	PhaseGroup = "GROUP"

	// NoteRest tags the walkover emitted for a bye slot.
	NoteRest = "rest"
)

// ErrAlreadyTerminal is returned when a terminal match is asked to change again.
var ErrAlreadyTerminal = errors.New("match already terminal")

// OpenStatuses are the states a terminal transition may start from.
var OpenStatuses = []Status{StatusScheduled, StatusInProgress}

func (s Status) IsTerminal() bool {
	switch s {
	case StatusFinished, StatusCancelled, StatusWalkover:
		return true
	default:
		return false
	}
}

func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	switch status {
	case StatusScheduled, StatusInProgress, StatusFinished, StatusCancelled, StatusWalkover:
		return status, nil
	case "":
		return StatusScheduled, nil
	default:
		return "", fmt.Errorf("invalid match status: %s", value)
	}
}

type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Match is a fixture of a group or a knockout phase.
type Match struct {
	ID           int64
	TournamentID string
	// GroupID is empty for knockout matches.
	GroupID    string
	HomeTeamID string
	// AwayTeamID is empty for a bye.
	AwayTeamID  string
	Round       int
	Phase       string
	ScheduledAt time.Time
	Venue       string
	Status      Status
	Score       *Score
	Notes       []string
	HomeBonus   standing.Bonus
	AwayBonus   standing.Bonus
	FinishedAt  *time.Time
}

func (m Match) Validate() error {
	if m.TournamentID == "" {
		return fmt.Errorf("match tournament id is required")
	}
	if m.HomeTeamID == "" {
		return fmt.Errorf("match home team id is required")
	}
	if m.HomeTeamID == m.AwayTeamID {
		return fmt.Errorf("match home and away team must differ: %s", m.HomeTeamID)
	}
	if m.Round < 1 {
		return fmt.Errorf("match round must be >= 1")
	}
	if _, err := ParseStatus(string(m.Status)); err != nil {
		return err
	}

	return nil
}

func (m Match) IsBye() bool {
	return m.AwayTeamID == ""
}

func (m Match) IsKnockout() bool {
	return m.GroupID == ""
}

func (m Match) Involves(teamID string) bool {
	return teamID != "" && (m.HomeTeamID == teamID || m.AwayTeamID == teamID)
}

// Opponent returns the other side of teamID, or "" on a bye.
func (m Match) Opponent(teamID string) string {
	if m.HomeTeamID == teamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// PairKey identifies an unordered team pairing.
func PairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "|" + b
}

// Before orders matches chronologically. Unscheduled matches sort last; round
// and id break ties.
func Before(a, b Match) bool {
	az, bz := a.ScheduledAt.IsZero(), b.ScheduledAt.IsZero()
	switch {
	case az != bz:
		return bz
	case !az && !a.ScheduledAt.Equal(b.ScheduledAt):
		return a.ScheduledAt.Before(b.ScheduledAt)
	}
	if a.Round != b.Round {
		return a.Round < b.Round
	}
	return a.ID < b.ID
}
