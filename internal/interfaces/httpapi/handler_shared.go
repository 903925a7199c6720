package httpapi

import (
	"time"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/usecase"
)

type bonusRequest struct {
	Protocol bool `json:"protocol"`
	Conduct  bool `json:"conduct"`
}

func (b bonusRequest) toDomain() standing.Bonus {
	return standing.Bonus{Protocol: b.Protocol, Conduct: b.Conduct}
}

type recordResultRequest struct {
	HomeGoals *int         `json:"homeGoals" validate:"required,min=0,max=99"`
	AwayGoals *int         `json:"awayGoals" validate:"required,min=0,max=99"`
	HomeBonus bonusRequest `json:"homeBonus"`
	AwayBonus bonusRequest `json:"awayBonus"`
}

type walkoverRequest struct {
	WinnerTeamID string `json:"winnerTeamId" validate:"required,max=64"`
}

type cancellationRequest struct {
	Reason string `json:"reason" validate:"required,max=200"`
}

type ingestEventRequest struct {
	Type     string `json:"type" validate:"required,oneof=GOAL YELLOW_CARD RED_CARD MATCH_END goal yellow_card red_card match_end"`
	PlayerID string `json:"playerId" validate:"max=64"`
	Minute   int    `json:"minute" validate:"min=0,max=200"`
}

type qualificationRequest struct {
	PerGroup int `json:"perGroup" validate:"min=0,max=64"`
}

type tournamentDTO struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Category            string `json:"category"`
	ClassificationLevel int    `json:"classificationLevel"`
	RoundTrips          int    `json:"roundTrips"`
	SanctionDuration    int    `json:"sanctionDuration"`
	YellowThreshold     int    `json:"yellowThreshold"`
	StartsAt            string `json:"startsAt,omitempty"`
	RoundIntervalHours  int64  `json:"roundIntervalHours,omitempty"`
}

type groupDTO struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	TeamIDs []string `json:"teamIds"`
}

type tournamentDetailDTO struct {
	tournamentDTO
	Groups []groupDTO `json:"groups"`
}

type scoreDTO struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type matchDTO struct {
	ID           int64     `json:"id"`
	TournamentID string    `json:"tournamentId"`
	GroupID      string    `json:"groupId,omitempty"`
	HomeTeamID   string    `json:"homeTeamId"`
	AwayTeamID   string    `json:"awayTeamId,omitempty"`
	Round        int       `json:"round"`
	Phase        string    `json:"phase"`
	ScheduledAt  string    `json:"scheduledAt,omitempty"`
	Venue        string    `json:"venue,omitempty"`
	Status       string    `json:"status"`
	Score        *scoreDTO `json:"score,omitempty"`
	Notes        []string  `json:"notes,omitempty"`
	FinishedAt   string    `json:"finishedAt,omitempty"`
}

type standingDTO struct {
	Rank           int    `json:"rank,omitempty"`
	TeamID         string `json:"teamId"`
	Points         int    `json:"points"`
	Played         int    `json:"played"`
	Won            int    `json:"won"`
	Drawn          int    `json:"drawn"`
	Lost           int    `json:"lost"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Qualified      bool   `json:"qualified"`
}

type groupTableDTO struct {
	GroupID   string        `json:"groupId"`
	GroupName string        `json:"groupName"`
	Standings []standingDTO `json:"standings"`
}

type fixturesResultDTO struct {
	Outcome string     `json:"outcome"`
	Reason  string     `json:"reason,omitempty"`
	Matches []matchDTO `json:"matches"`
}

type knockoutResultDTO struct {
	Outcome  string     `json:"outcome"`
	Reason   string     `json:"reason,omitempty"`
	Phase    string     `json:"phase,omitempty"`
	Matches  []matchDTO `json:"matches"`
	Unpaired string     `json:"unpaired,omitempty"`
}

type suspensionDTO struct {
	ID               int64  `json:"id"`
	PlayerID         string `json:"playerId"`
	TeamID           string `json:"teamId"`
	OriginMatchID    int64  `json:"originMatchId"`
	SanctionDuration int    `json:"sanctionDuration"`
	Status           string `json:"status"`
	Reason           string `json:"reason"`
	ServedAt         string `json:"servedAt,omitempty"`
}

type matchResultDTO struct {
	Outcome           string          `json:"outcome"`
	Reason            string          `json:"reason,omitempty"`
	Match             matchDTO        `json:"match"`
	Standings         []standingDTO   `json:"standings,omitempty"`
	ServedSuspensions []suspensionDTO `json:"servedSuspensions,omitempty"`
}

type eventDTO struct {
	ID         int64  `json:"id"`
	MatchID    int64  `json:"matchId"`
	PlayerID   string `json:"playerId,omitempty"`
	TeamID     string `json:"teamId,omitempty"`
	Type       string `json:"type"`
	Minute     int    `json:"minute"`
	OccurredAt string `json:"occurredAt"`
}

type ingestEventResultDTO struct {
	Event      eventDTO        `json:"event"`
	Suspension *suspensionDTO  `json:"suspension,omitempty"`
	NotStacked bool            `json:"notStacked,omitempty"`
	Result     *matchResultDTO `json:"result,omitempty"`
}

type playerDTO struct {
	ID     string `json:"id"`
	TeamID string `json:"teamId"`
	Name   string `json:"name"`
	Number int    `json:"number"`
	Status string `json:"status"`
}

type excludedPlayerDTO struct {
	playerDTO
	SuspensionID  int64 `json:"suspensionId"`
	OriginMatchID int64 `json:"originMatchId"`
}

type teamEligibilityDTO struct {
	TeamID   string              `json:"teamId"`
	Eligible []playerDTO         `json:"eligible"`
	Excluded []excludedPlayerDTO `json:"excluded"`
}

type eligibilityDTO struct {
	MatchID            int64                `json:"matchId"`
	Teams              []teamEligibilityDTO `json:"teams"`
	ClearedSuspensions []suspensionDTO      `json:"clearedSuspensions,omitempty"`
}

func tournamentToDTO(t tournament.Tournament) tournamentDTO {
	return tournamentDTO{
		ID:                  t.ID,
		Name:                t.Name,
		Category:            t.Category,
		ClassificationLevel: t.ClassificationLevel,
		RoundTrips:          t.RoundTrips,
		SanctionDuration:    t.SanctionDuration,
		YellowThreshold:     t.YellowThreshold,
		StartsAt:            formatTime(t.StartsAt),
		RoundIntervalHours:  int64(t.RoundInterval / time.Hour),
	}
}

func tournamentDetailToDTO(v usecase.TournamentDetail) tournamentDetailDTO {
	groups := make([]groupDTO, 0, len(v.Groups))
	for _, g := range v.Groups {
		groups = append(groups, groupDTO{
			ID:      g.ID,
			Name:    g.Name,
			TeamIDs: append([]string{}, g.TeamIDs...),
		})
	}
	return tournamentDetailDTO{
		tournamentDTO: tournamentToDTO(v.Tournament),
		Groups:        groups,
	}
}

func matchToDTO(m match.Match) matchDTO {
	out := matchDTO{
		ID:           m.ID,
		TournamentID: m.TournamentID,
		GroupID:      m.GroupID,
		HomeTeamID:   m.HomeTeamID,
		AwayTeamID:   m.AwayTeamID,
		Round:        m.Round,
		Phase:        m.Phase,
		ScheduledAt:  formatTime(m.ScheduledAt),
		Venue:        m.Venue,
		Status:       string(m.Status),
		Notes:        m.Notes,
		FinishedAt:   formatOptionalTime(m.FinishedAt),
	}
	if m.Score != nil {
		out.Score = &scoreDTO{Home: m.Score.Home, Away: m.Score.Away}
	}
	return out
}

func matchesToDTO(items []match.Match) []matchDTO {
	out := make([]matchDTO, 0, len(items))
	for _, m := range items {
		out = append(out, matchToDTO(m))
	}
	return out
}

func recordToDTO(r standing.Record) standingDTO {
	return standingDTO{
		TeamID:         r.TeamID,
		Points:         r.Points,
		Played:         r.Played,
		Won:            r.Won,
		Drawn:          r.Drawn,
		Lost:           r.Lost,
		GoalsFor:       r.GoalsFor,
		GoalsAgainst:   r.GoalsAgainst,
		GoalDifference: r.GoalDifference,
		Qualified:      r.Qualified,
	}
}

// standingsToDTO numbers records in the order given.
func standingsToDTO(records []standing.Record) []standingDTO {
	out := make([]standingDTO, 0, len(records))
	for i, r := range records {
		dto := recordToDTO(r)
		dto.Rank = i + 1
		out = append(out, dto)
	}
	return out
}

func groupTableToDTO(v usecase.GroupStandings) groupTableDTO {
	return groupTableDTO{
		GroupID:   v.Group.ID,
		GroupName: v.Group.Name,
		Standings: standingsToDTO(v.Records),
	}
}

func groupTablesToDTO(items []usecase.GroupStandings) []groupTableDTO {
	out := make([]groupTableDTO, 0, len(items))
	for _, v := range items {
		out = append(out, groupTableToDTO(v))
	}
	return out
}

func suspensionToDTO(s discipline.Suspension) suspensionDTO {
	return suspensionDTO{
		ID:               s.ID,
		PlayerID:         s.PlayerID,
		TeamID:           s.TeamID,
		OriginMatchID:    s.OriginMatchID,
		SanctionDuration: s.SanctionDuration,
		Status:           string(s.Status),
		Reason:           string(s.Reason),
		ServedAt:         formatOptionalTime(s.ServedAt),
	}
}

func suspensionsToDTO(items []discipline.Suspension) []suspensionDTO {
	if len(items) == 0 {
		return nil
	}
	out := make([]suspensionDTO, 0, len(items))
	for _, s := range items {
		out = append(out, suspensionToDTO(s))
	}
	return out
}

func matchResultToDTO(v usecase.MatchResult) matchResultDTO {
	var standings []standingDTO
	if len(v.Standings) > 0 {
		standings = make([]standingDTO, 0, len(v.Standings))
		for _, r := range v.Standings {
			standings = append(standings, recordToDTO(r))
		}
	}
	return matchResultDTO{
		Outcome:           string(v.Outcome),
		Reason:            v.Reason,
		Match:             matchToDTO(v.Match),
		Standings:         standings,
		ServedSuspensions: suspensionsToDTO(v.ServedSuspensions),
	}
}

func ingestEventResultToDTO(v usecase.IngestEventResult) ingestEventResultDTO {
	out := ingestEventResultDTO{
		Event: eventDTO{
			ID:         v.Event.ID,
			MatchID:    v.Event.MatchID,
			PlayerID:   v.Event.PlayerID,
			TeamID:     v.Event.TeamID,
			Type:       string(v.Event.Type),
			Minute:     v.Event.Minute,
			OccurredAt: formatTime(v.Event.OccurredAt),
		},
		NotStacked: v.NotStacked,
	}
	if v.Suspension != nil {
		s := suspensionToDTO(*v.Suspension)
		out.Suspension = &s
	}
	if v.Result != nil {
		r := matchResultToDTO(*v.Result)
		out.Result = &r
	}
	return out
}

func playerToDTO(p player.Player) playerDTO {
	return playerDTO{
		ID:     p.ID,
		TeamID: p.TeamID,
		Name:   p.Name,
		Number: p.Number,
		Status: string(p.Status),
	}
}

func eligibilityToDTO(v usecase.Eligibility) eligibilityDTO {
	teams := make([]teamEligibilityDTO, 0, len(v.Teams))
	for _, team := range v.Teams {
		eligible := make([]playerDTO, 0, len(team.Eligible))
		for _, p := range team.Eligible {
			eligible = append(eligible, playerToDTO(p))
		}
		excluded := make([]excludedPlayerDTO, 0, len(team.Excluded))
		for _, e := range team.Excluded {
			excluded = append(excluded, excludedPlayerDTO{
				playerDTO:     playerToDTO(e.Player),
				SuspensionID:  e.SuspensionID,
				OriginMatchID: e.OriginMatchID,
			})
		}
		teams = append(teams, teamEligibilityDTO{
			TeamID:   team.TeamID,
			Eligible: eligible,
			Excluded: excluded,
		})
	}
	return eligibilityDTO{
		MatchID:            v.MatchID,
		Teams:              teams,
		ClearedSuspensions: suspensionsToDTO(v.ClearedSuspensions),
	}
}

func formatTime(v time.Time) string {
	if v.IsZero() {
		return ""
	}
	return v.UTC().Format(time.RFC3339)
}

func formatOptionalTime(v *time.Time) string {
	if v == nil {
		return ""
	}
	return formatTime(*v)
}
