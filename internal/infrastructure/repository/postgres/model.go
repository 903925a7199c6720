package postgres

import (
	"database/sql"
	"time"
)

type tournamentTableModel struct {
	ID                   int64        `db:"id"`
	PublicID             string       `db:"public_id"`
	Name                 string       `db:"name"`
	Category             string       `db:"category"`
	ClassificationLevel  int          `db:"classification_level"`
	RoundTrips           int          `db:"round_trips"`
	SanctionDuration     int          `db:"sanction_duration"`
	YellowThreshold      int          `db:"yellow_threshold"`
	StartsAt             sql.NullTime `db:"starts_at"`
	RoundIntervalSeconds int64        `db:"round_interval_seconds"`
	CreatedAt            time.Time    `db:"created_at"`
	UpdatedAt            time.Time    `db:"updated_at"`
}

type groupTableModel struct {
	ID           int64     `db:"id"`
	PublicID     string    `db:"public_id"`
	TournamentID string    `db:"tournament_public_id"`
	Name         string    `db:"name"`
	CreatedAt    time.Time `db:"created_at"`
}

type groupTeamTableModel struct {
	TournamentID string `db:"tournament_public_id"`
	GroupID      string `db:"group_public_id"`
	TeamID       string `db:"team_public_id"`
	Position     int    `db:"position"`
}

type playerTableModel struct {
	ID        int64     `db:"id"`
	PublicID  string    `db:"public_id"`
	TeamID    string    `db:"team_public_id"`
	Name      string    `db:"name"`
	Number    int       `db:"shirt_number"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type standingTableModel struct {
	ID             int64     `db:"id"`
	TournamentID   string    `db:"tournament_public_id"`
	GroupID        string    `db:"group_public_id"`
	TeamID         string    `db:"team_public_id"`
	Points         int       `db:"points"`
	Played         int       `db:"played"`
	Won            int       `db:"won"`
	Drawn          int       `db:"drawn"`
	Lost           int       `db:"lost"`
	GoalsFor       int       `db:"goals_for"`
	GoalsAgainst   int       `db:"goals_against"`
	GoalDifference int       `db:"goal_difference"`
	Qualified      bool      `db:"qualified"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

type standingInsertModel struct {
	TournamentID string `db:"tournament_public_id"`
	GroupID      string `db:"group_public_id"`
	TeamID       string `db:"team_public_id"`
}

type matchTableModel struct {
	ID           int64         `db:"id"`
	TournamentID string        `db:"tournament_public_id"`
	GroupID      string        `db:"group_public_id"`
	HomeTeamID   string        `db:"home_team_public_id"`
	AwayTeamID   string        `db:"away_team_public_id"`
	Round        int           `db:"round"`
	Phase        string        `db:"phase"`
	ScheduledAt  sql.NullTime  `db:"scheduled_at"`
	Venue        string        `db:"venue"`
	Status       string        `db:"status"`
	HomeGoals    sql.NullInt64 `db:"home_goals"`
	AwayGoals    sql.NullInt64 `db:"away_goals"`
	Details      []byte        `db:"details"`
	FinishedAt   sql.NullTime  `db:"finished_at"`
	CreatedAt    time.Time     `db:"created_at"`
	UpdatedAt    time.Time     `db:"updated_at"`
}

type matchInsertModel struct {
	ID           int64         `db:"id"`
	TournamentID string        `db:"tournament_public_id"`
	GroupID      string        `db:"group_public_id"`
	HomeTeamID   string        `db:"home_team_public_id"`
	AwayTeamID   string        `db:"away_team_public_id"`
	Round        int           `db:"round"`
	Phase        string        `db:"phase"`
	ScheduledAt  sql.NullTime  `db:"scheduled_at"`
	Venue        string        `db:"venue"`
	Status       string        `db:"status"`
	HomeGoals    sql.NullInt64 `db:"home_goals"`
	AwayGoals    sql.NullInt64 `db:"away_goals"`
	Details      string        `db:"details"`
	FinishedAt   sql.NullTime  `db:"finished_at"`
}

type eventTableModel struct {
	ID           int64     `db:"id"`
	MatchID      int64     `db:"match_id"`
	TournamentID string    `db:"tournament_public_id"`
	PlayerID     string    `db:"player_public_id"`
	TeamID       string    `db:"team_public_id"`
	Type         string    `db:"event_type"`
	Minute       int       `db:"minute"`
	OccurredAt   time.Time `db:"occurred_at"`
}

type suspensionTableModel struct {
	ID               int64        `db:"id"`
	TournamentID     string       `db:"tournament_public_id"`
	PlayerID         string       `db:"player_public_id"`
	TeamID           string       `db:"team_public_id"`
	OriginMatchID    int64        `db:"origin_match_id"`
	TriggerEventID   int64        `db:"trigger_event_id"`
	SanctionDuration int          `db:"sanction_duration"`
	Status           string       `db:"status"`
	Reason           string       `db:"reason"`
	CreatedAt        time.Time    `db:"created_at"`
	ServedAt         sql.NullTime `db:"served_at"`
}
