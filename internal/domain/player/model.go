package player

import (
	"fmt"
	"strings"
)

// Status is the tournament-wide eligibility flag of a player.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

var AllStatuses = map[Status]struct{}{
	StatusActive:    {},
	StatusSuspended: {},
}

// Player is a registered squad member. Roster data is owned elsewhere; the
// engine only reads team membership and flips Status.
type Player struct {
	ID     string
	TeamID string
	Name   string
	Number int
	Status Status
}

func (p Player) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("player id is required")
	}
	if p.TeamID == "" {
		return fmt.Errorf("player team id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("player name is required")
	}
	if _, ok := AllStatuses[p.Status]; !ok {
		return fmt.Errorf("invalid player status: %s", p.Status)
	}

	return nil
}

func ParseStatus(value string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(value)))
	if status == "" {
		return StatusActive, nil
	}
	if _, ok := AllStatuses[status]; !ok {
		return "", fmt.Errorf("invalid player status: %s", value)
	}
	return status, nil
}
