package standing

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInconsistentWrite marks a standings write that would leave a multi-record
// update partially applied. It is never recovered locally.
var ErrInconsistentWrite = errors.New("inconsistent standings write")

// Key identifies one standings record.
type Key struct {
	TournamentID string
	GroupID      string
	TeamID       string
}

func (k Key) String() string {
	return k.TournamentID + "/" + k.GroupID + "/" + k.TeamID
}

// Record is one row of a group table.
type Record struct {
	TournamentID   string
	GroupID        string
	TeamID         string
	Points         int
	Played         int
	Won            int
	Drawn          int
	Lost           int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Qualified      bool
}

func NewRecord(key Key) Record {
	return Record{
		TournamentID: key.TournamentID,
		GroupID:      key.GroupID,
		TeamID:       key.TeamID,
	}
}

func (r Record) Key() Key {
	return Key{TournamentID: r.TournamentID, GroupID: r.GroupID, TeamID: r.TeamID}
}

// ApplyResult books one played match from the perspective of this team.
func (r *Record) ApplyResult(scheme Scheme, goalsFor, goalsAgainst int, bonus Bonus) {
	r.Played++
	switch {
	case goalsFor > goalsAgainst:
		r.Won++
		r.Points += scheme.Win
	case goalsFor == goalsAgainst:
		r.Drawn++
		r.Points += scheme.Draw
	default:
		r.Lost++
		r.Points += scheme.Loss
	}
	r.Points += scheme.BonusPoints(bonus)
	r.GoalsFor += goalsFor
	r.GoalsAgainst += goalsAgainst
	r.recompute()
}

// ApplyPenaltyLoss books a punitive loss without crediting the opponent.
func (r *Record) ApplyPenaltyLoss(scheme Scheme) {
	r.Played++
	r.Lost++
	r.Points += scheme.Loss
	r.GoalsAgainst += scheme.PenaltyGoals
	r.recompute()
}

func (r *Record) recompute() {
	r.GoalDifference = r.GoalsFor - r.GoalsAgainst
}

func (r Record) Validate() error {
	if r.TournamentID == "" || r.GroupID == "" || r.TeamID == "" {
		return fmt.Errorf("standings key is incomplete: %s", r.Key())
	}
	if r.Played != r.Won+r.Drawn+r.Lost {
		return fmt.Errorf("played=%d does not match won+drawn+lost=%d for %s", r.Played, r.Won+r.Drawn+r.Lost, r.Key())
	}
	if r.GoalDifference != r.GoalsFor-r.GoalsAgainst {
		return fmt.Errorf("goal difference=%d does not match goals %d-%d for %s", r.GoalDifference, r.GoalsFor, r.GoalsAgainst, r.Key())
	}
	if r.Played < 0 || r.GoalsFor < 0 || r.GoalsAgainst < 0 {
		return fmt.Errorf("negative counters for %s", r.Key())
	}
	return nil
}

// Less reports whether a ranks above b.
func Less(a, b Record) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.GoalsAgainst < b.GoalsAgainst
}

// Rank returns a ranked copy of records. Full ties keep their input order.
func Rank(records []Record) []Record {
	out := append([]Record(nil), records...)
	sort.SliceStable(out, func(i, j int) bool {
		return Less(out[i], out[j])
	})
	return out
}
