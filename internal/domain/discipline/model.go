package discipline

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrPlayerAlreadySanctioned rejects events for a player who is suspended or
// was already sent off in the match.
var ErrPlayerAlreadySanctioned = errors.New("player already sanctioned")

type EventType string

const (
	EventGoal       EventType = "GOAL"
	EventYellowCard EventType = "YELLOW_CARD"
	EventRedCard    EventType = "RED_CARD"
	EventMatchEnd   EventType = "MATCH_END"
)

func ParseEventType(value string) (EventType, error) {
	eventType := EventType(strings.ToUpper(strings.TrimSpace(value)))
	switch eventType {
	case EventGoal, EventYellowCard, EventRedCard, EventMatchEnd:
		return eventType, nil
	default:
		return "", fmt.Errorf("invalid event type: %s", value)
	}
}

// IsPlayerEvent reports whether the event is attributed to a player.
func (t EventType) IsPlayerEvent() bool {
	return t != EventMatchEnd
}

// Event is one in-match occurrence. Match end events carry no player.
type Event struct {
	ID           int64
	MatchID      int64
	TournamentID string
	PlayerID     string
	TeamID       string
	Type         EventType
	Minute       int
	OccurredAt   time.Time
}

type SuspensionStatus string

const (
	SuspensionActive SuspensionStatus = "ACTIVE"
	SuspensionServed SuspensionStatus = "SERVED"
)

type Reason string

const (
	ReasonSecondYellow       Reason = "SECOND_YELLOW"
	ReasonRedCard            Reason = "RED_CARD"
	ReasonAccumulatedYellows Reason = "ACCUMULATED_YELLOWS"
)

// Suspension excludes a player from the next SanctionDuration matches their
// team finishes after OriginMatchID.
type Suspension struct {
	ID               int64
	TournamentID     string
	PlayerID         string
	TeamID           string
	OriginMatchID    int64
	TriggerEventID   int64
	SanctionDuration int
	Status           SuspensionStatus
	Reason           Reason
	CreatedAt        time.Time
	ServedAt         *time.Time
}

func (s Suspension) IsActive() bool {
	return s.Status == SuspensionActive
}
