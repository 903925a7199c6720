package discipline

import (
	"sort"

	"github.com/riskibarqy/league-engine/internal/domain/match"
)

// SentOff reports whether playerID was already dismissed in a match, given
// that match's events.
func SentOff(matchEvents []Event, playerID string) bool {
	yellows := 0
	for _, ev := range matchEvents {
		if ev.PlayerID != playerID {
			continue
		}
		switch ev.Type {
		case EventRedCard:
			return true
		case EventYellowCard:
			yellows++
		}
	}
	return yellows >= 2
}

// Trigger decides whether an incoming card creates a suspension.
//
// matchEvents are the player's earlier events in the same match.
// accumulated is the number of yellow cards the player collected in the
// tournament since their last suspension, excluding the incoming one.
// threshold <= 0 disables accumulation across matches.
func Trigger(incoming Event, matchEvents []Event, accumulated, threshold int) (Reason, bool) {
	switch incoming.Type {
	case EventRedCard:
		return ReasonRedCard, true
	case EventYellowCard:
		for _, ev := range matchEvents {
			if ev.PlayerID == incoming.PlayerID && ev.Type == EventYellowCard {
				return ReasonSecondYellow, true
			}
		}
		if threshold > 0 && accumulated+1 >= threshold {
			return ReasonAccumulatedYellows, true
		}
	}
	return "", false
}

// YellowsSince counts the yellow cards in events newer than the event id
// afterEventID.
func YellowsSince(events []Event, afterEventID int64) int {
	count := 0
	for _, ev := range events {
		if ev.Type == EventYellowCard && ev.ID > afterEventID {
			count++
		}
	}
	return count
}

// Candidates returns the team's finished matches played after origin, oldest
// first. These are the matches a suspension can be served in.
func Candidates(origin match.Match, teamMatches []match.Match) []match.Match {
	out := make([]match.Match, 0, len(teamMatches))
	for _, m := range teamMatches {
		if m.ID == origin.ID || m.Status != match.StatusFinished {
			continue
		}
		if !match.Before(origin, m) {
			continue
		}
		out = append(out, m)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return match.Before(out[i], out[j])
	})
	return out
}

// Missed walks candidates in order and returns the first duration matches the
// player sat out. served is true once that many have been missed. A candidate
// the player took part in is skipped rather than ending the scan, so the
// window extends to the next candidate.
func Missed(candidates []match.Match, participated map[int64]int, duration int) ([]match.Match, bool) {
	if duration <= 0 {
		return nil, true
	}
	missed := make([]match.Match, 0, duration)
	for _, m := range candidates {
		if participated[m.ID] > 0 {
			continue
		}
		missed = append(missed, m)
		if len(missed) == duration {
			return missed, true
		}
	}
	return missed, false
}

// Excluded reports whether a player may not be fielded in matchID. A player is
// never excluded from the match their suspension started in.
func Excluded(suspended bool, matchID int64, active []Suspension) bool {
	originHere := false
	for _, s := range active {
		if !s.IsActive() {
			continue
		}
		if s.OriginMatchID != matchID {
			return true
		}
		originHere = true
	}
	return suspended && !originHere
}
