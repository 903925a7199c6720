package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/platform/dispatch"
)

func (e *engine) ingest(t *testing.T, matchID int64, playerID string, eventType discipline.EventType) IngestEventResult {
	t.Helper()

	res, err := e.discipline.IngestEvent(context.Background(), IngestEventInput{
		MatchID:  matchID,
		PlayerID: playerID,
		Type:     eventType,
		Minute:   10,
	})
	if err != nil {
		t.Fatalf("ingest %s for %s in match %d: %v", eventType, playerID, matchID, err)
	}
	return res
}

func (e *engine) playerStatus(t *testing.T, playerID string) player.Status {
	t.Helper()

	p, ok, err := e.store.Repositories().Players.GetByID(context.Background(), playerID)
	if err != nil || !ok {
		t.Fatalf("get player %s: ok=%v err=%v", playerID, ok, err)
	}
	return p.Status
}

func excludedIDs(el Eligibility, teamID string) []string {
	var out []string
	for _, team := range el.Teams {
		if team.TeamID != teamID {
			continue
		}
		for _, ex := range team.Excluded {
			out = append(out, ex.Player.ID)
		}
	}
	return out
}

func TestDisciplineService_AccumulatedYellowsAreServedInNextMatch(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.discipline.now = fixedClock()
	e.generate(t, memory.TournamentIDSpringCup)
	matches := e.teamMatches(t, memory.TournamentIDSpringCup, "harbor-fc")
	if len(matches) != 3 {
		t.Fatalf("expected three harbor-fc matches, got %d", len(matches))
	}
	m1, m2, m3 := matches[0], matches[1], matches[2]
	const booked = "harbor-fc-p1"

	first := e.ingest(t, m1.ID, booked, discipline.EventYellowCard)
	if first.Suspension != nil {
		t.Fatalf("single yellow must not suspend, got %+v", first.Suspension)
	}
	end := e.ingest(t, m1.ID, "", discipline.EventMatchEnd)
	if end.Result == nil || end.Result.Outcome != OutcomeApplied {
		t.Fatalf("match end must finalize the match, got %+v", end.Result)
	}

	second := e.ingest(t, m2.ID, booked, discipline.EventYellowCard)
	if second.Suspension == nil {
		t.Fatal("second yellow in the tournament must suspend")
	}
	if second.Suspension.Reason != discipline.ReasonAccumulatedYellows || second.Suspension.OriginMatchID != m2.ID {
		t.Fatalf("unexpected suspension: %+v", second.Suspension)
	}
	if got := e.playerStatus(t, booked); got != player.StatusSuspended {
		t.Fatalf("unexpected player status: %s", got)
	}

	// Still allowed to play on in the match the suspension started in.
	e.ingest(t, m2.ID, booked, discipline.EventGoal)
	e.ingest(t, m2.ID, "", discipline.EventMatchEnd)

	el, err := e.discipline.ResolveEligibility(context.Background(), m3.ID)
	if err != nil {
		t.Fatalf("resolve eligibility: %v", err)
	}
	if got := excludedIDs(el, "harbor-fc"); len(got) != 1 || got[0] != booked {
		t.Fatalf("unexpected excluded players: %v", got)
	}
	if len(el.EligiblePlayers()) != 5 {
		t.Fatalf("unexpected eligible count: got=%d want=5", len(el.EligiblePlayers()))
	}

	_, err = e.discipline.IngestEvent(context.Background(), IngestEventInput{MatchID: m3.ID, PlayerID: booked, Type: discipline.EventGoal})
	if !errors.Is(err, discipline.ErrPlayerAlreadySanctioned) {
		t.Fatalf("expected ErrPlayerAlreadySanctioned, got %v", err)
	}

	res := e.finish(t, m3.ID, 0, 0)
	if len(res.ServedSuspensions) != 1 || res.ServedSuspensions[0].PlayerID != booked {
		t.Fatalf("expected the suspension to be served, got %+v", res.ServedSuspensions)
	}
	if got := e.playerStatus(t, booked); got != player.StatusActive {
		t.Fatalf("player must be reinstated, got %s", got)
	}

	wantTopics := map[string]bool{
		dispatch.TopicSuspensionCreated: false,
		dispatch.TopicSuspensionServed:  false,
		dispatch.TopicMatchFinalized:    false,
	}
	for _, topic := range e.publisher.topics() {
		if _, ok := wantTopics[topic]; ok {
			wantTopics[topic] = true
		}
	}
	for topic, seen := range wantTopics {
		if !seen {
			t.Fatalf("expected a %s notification", topic)
		}
	}
}

func TestDisciplineService_SecondYellowInMatchSendsOff(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	first := e.teamMatches(t, memory.TournamentIDSpringCup, "harbor-fc")[0]
	const booked = "harbor-fc-p2"

	e.ingest(t, first.ID, booked, discipline.EventYellowCard)
	res := e.ingest(t, first.ID, booked, discipline.EventYellowCard)
	if res.Suspension == nil || res.Suspension.Reason != discipline.ReasonSecondYellow {
		t.Fatalf("expected a second yellow suspension, got %+v", res.Suspension)
	}

	_, err := e.discipline.IngestEvent(context.Background(), IngestEventInput{MatchID: first.ID, PlayerID: booked, Type: discipline.EventGoal, Minute: 80})
	if ReasonCode(err) != ReasonPlayerAlreadySanctioned {
		t.Fatalf("sent off player must be rejected, got %v", err)
	}
}

func TestDisciplineService_RedCardIsNotStackedOnActiveSuspension(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	matches := e.teamMatches(t, memory.TournamentIDSpringCup, "harbor-fc")
	const booked = "harbor-fc-p3"

	e.ingest(t, matches[0].ID, booked, discipline.EventYellowCard)
	e.ingest(t, matches[0].ID, "", discipline.EventMatchEnd)
	accumulated := e.ingest(t, matches[1].ID, booked, discipline.EventYellowCard)
	if accumulated.Suspension == nil {
		t.Fatal("expected an accumulation suspension")
	}

	red := e.ingest(t, matches[1].ID, booked, discipline.EventRedCard)
	if red.Suspension != nil || !red.NotStacked {
		t.Fatalf("red card must not create a second suspension: %+v", red)
	}

	active, err := e.store.Repositories().Suspensions.ListActiveByTournament(context.Background(), memory.TournamentIDSpringCup)
	if err != nil {
		t.Fatalf("list active suspensions: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected a single active suspension, got %d", len(active))
	}
}

func TestDisciplineService_RedCard(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	m := e.teamMatches(t, memory.TournamentIDSpringCup, "riverside")[0]
	const booked = "riverside-p1"

	res := e.ingest(t, m.ID, booked, discipline.EventRedCard)
	if res.Suspension == nil || res.Suspension.Reason != discipline.ReasonRedCard || res.Suspension.SanctionDuration != 1 {
		t.Fatalf("unexpected red card suspension: %+v", res.Suspension)
	}

	stored, _, err := e.store.Repositories().Matches.GetByID(context.Background(), m.ID)
	if err != nil {
		t.Fatalf("get match: %v", err)
	}
	if stored.Status != match.StatusInProgress {
		t.Fatalf("first event must start the match, got %s", stored.Status)
	}
}

func TestDisciplineService_MatchEndTalliesGoals(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	m := e.teamMatches(t, memory.TournamentIDSpringCup, "northside")[0]

	e.ingest(t, m.ID, m.HomeTeamID+"-p1", discipline.EventGoal)
	e.ingest(t, m.ID, m.HomeTeamID+"-p2", discipline.EventGoal)
	e.ingest(t, m.ID, m.AwayTeamID+"-p1", discipline.EventGoal)
	res := e.ingest(t, m.ID, "", discipline.EventMatchEnd)

	if res.Result == nil || res.Result.Match.Score == nil {
		t.Fatalf("expected a finalized match, got %+v", res.Result)
	}
	if *res.Result.Match.Score != (match.Score{Home: 2, Away: 1}) {
		t.Fatalf("unexpected tallied score: %+v", *res.Result.Match.Score)
	}
	home := e.record(t, memory.TournamentIDSpringCup, "group-a", m.HomeTeamID)
	if home.Points != 3 || home.GoalsFor != 2 {
		t.Fatalf("unexpected home record: %+v", home)
	}

	_, err := e.discipline.IngestEvent(context.Background(), IngestEventInput{MatchID: m.ID, PlayerID: m.HomeTeamID + "-p1", Type: discipline.EventGoal})
	if !errors.Is(err, match.ErrAlreadyTerminal) {
		t.Fatalf("expected ErrAlreadyTerminal, got %v", err)
	}
}

func TestDisciplineService_IngestEvent_RejectsBadInput(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	m := e.teamMatches(t, memory.TournamentIDSpringCup, "harbor-fc")[0]

	tests := []struct {
		name   string
		input  IngestEventInput
		reason string
	}{
		{name: "unknown type", input: IngestEventInput{MatchID: m.ID, PlayerID: "harbor-fc-p1", Type: "CORNER"}, reason: ReasonInvalidInput},
		{name: "missing player", input: IngestEventInput{MatchID: m.ID, Type: discipline.EventGoal}, reason: ReasonInvalidInput},
		{name: "negative minute", input: IngestEventInput{MatchID: m.ID, PlayerID: "harbor-fc-p1", Type: discipline.EventGoal, Minute: -1}, reason: ReasonInvalidInput},
		{name: "player of another team", input: IngestEventInput{MatchID: m.ID, PlayerID: "granite-p1", Type: discipline.EventGoal}, reason: ReasonInvalidInput},
		{name: "unknown player", input: IngestEventInput{MatchID: m.ID, PlayerID: "nobody", Type: discipline.EventGoal}, reason: ReasonNotFound},
		{name: "unknown match", input: IngestEventInput{MatchID: 9999, PlayerID: "harbor-fc-p1", Type: discipline.EventGoal}, reason: ReasonNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := e.discipline.IngestEvent(context.Background(), tc.input)
			if got := ReasonCode(err); got != tc.reason {
				t.Fatalf("unexpected reason: got=%s want=%s err=%v", got, tc.reason, err)
			}
		})
	}
}

func TestDisciplineService_ResolveEligibility_ClearsOverdueSuspension(t *testing.T) {
	t.Parallel()

	e := newEngine(t)
	e.generate(t, memory.TournamentIDSpringCup)
	matches := e.teamMatches(t, memory.TournamentIDSpringCup, "old-mill")
	e.finish(t, matches[0].ID, 1, 0)
	e.finish(t, matches[1].ID, 1, 0)

	const booked = "old-mill-p2"
	err := e.store.WithinTx(context.Background(), func(ctx context.Context, repos store.Repositories) error {
		if err := repos.Suspensions.Create(ctx, discipline.Suspension{
			ID:               1,
			TournamentID:     memory.TournamentIDSpringCup,
			PlayerID:         booked,
			TeamID:           "old-mill",
			OriginMatchID:    matches[0].ID,
			SanctionDuration: 1,
			Status:           discipline.SuspensionActive,
			Reason:           discipline.ReasonRedCard,
		}); err != nil {
			return err
		}
		return repos.Players.UpdateStatus(ctx, booked, player.StatusSuspended)
	})
	if err != nil {
		t.Fatalf("seed suspension: %v", err)
	}

	el, err := e.discipline.ResolveEligibility(context.Background(), matches[2].ID)
	if err != nil {
		t.Fatalf("resolve eligibility: %v", err)
	}
	if len(el.ClearedSuspensions) != 1 || el.ClearedSuspensions[0].PlayerID != booked {
		t.Fatalf("expected the overdue suspension to clear, got %+v", el.ClearedSuspensions)
	}
	if got := excludedIDs(el, "old-mill"); len(got) != 0 {
		t.Fatalf("no player should be excluded, got %v", got)
	}
	if got := e.playerStatus(t, booked); got != player.StatusActive {
		t.Fatalf("player must be reinstated, got %s", got)
	}
}
