package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	matchmock "github.com/riskibarqy/league-engine/internal/mocks/domain/match"
	tournamentmock "github.com/riskibarqy/league-engine/internal/mocks/domain/tournament"
)

// readOnlyTx serves fixed repositories and refuses transactions.
type readOnlyTx struct {
	repos store.Repositories
}

func (r readOnlyTx) Repositories() store.Repositories {
	return r.repos
}

func (r readOnlyTx) WithinTx(context.Context, func(context.Context, store.Repositories) error) error {
	return errors.New("read only")
}

func TestTournamentService_GetTournament_SuccessUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), "trace_id", "trace-123")
	tournamentRepo := tournamentmock.NewRepository(t)
	groupRepo := tournamentmock.NewGroupRepository(t)
	service := NewTournamentService(readOnlyTx{repos: store.Repositories{Tournaments: tournamentRepo, Groups: groupRepo}})

	tournamentID := "autumn-cup-2026"
	groups := []tournament.Group{
		{ID: "g1", TournamentID: tournamentID, Name: "Group 1", TeamIDs: []string{"a", "b", "c"}},
	}
	tournamentRepo.
		On("GetByID", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), tournamentID).
		Return(tournament.Tournament{ID: tournamentID, Name: "Autumn Cup"}, true, nil).
		Once()
	groupRepo.
		On("ListByTournament", mock.MatchedBy(func(v context.Context) bool { return v == ctx }), tournamentID).
		Return(groups, nil).
		Once()

	got, err := service.GetTournament(ctx, tournamentID)
	if err != nil {
		t.Fatalf("get tournament: %v", err)
	}
	if got.Tournament.Name != "Autumn Cup" || len(got.Groups) != 1 {
		t.Fatalf("unexpected detail: %+v", got)
	}
}

func TestTournamentService_GetTournament_NotFoundUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tournamentRepo := tournamentmock.NewRepository(t)
	service := NewTournamentService(readOnlyTx{repos: store.Repositories{Tournaments: tournamentRepo}})

	tournamentRepo.
		On("GetByID", mock.Anything, "missing").
		Return(tournament.Tournament{}, false, nil).
		Once()

	_, err := service.GetTournament(ctx, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTournamentService_ListMatches_ScheduleOrderUsingMockery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	tournamentRepo := tournamentmock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	service := NewTournamentService(readOnlyTx{repos: store.Repositories{Tournaments: tournamentRepo, Matches: matchRepo}})

	day := time.Date(2026, 9, 5, 15, 0, 0, 0, time.UTC)
	stored := []match.Match{
		{ID: 3, Round: 2, ScheduledAt: day.AddDate(0, 0, 7)},
		{ID: 4, Round: 1},
		{ID: 2, Round: 1, ScheduledAt: day},
		{ID: 1, Round: 1, ScheduledAt: day},
	}
	tournamentRepo.
		On("GetByID", mock.Anything, "autumn").
		Return(tournament.Tournament{ID: "autumn"}, true, nil).
		Once()
	matchRepo.
		On("ListByTournament", mock.Anything, "autumn").
		Return(stored, nil).
		Once()

	got, err := service.ListMatches(ctx, "autumn")
	if err != nil {
		t.Fatalf("list matches: %v", err)
	}
	want := []int64{1, 2, 3, 4}
	for i, m := range got {
		if m.ID != want[i] {
			t.Fatalf("unexpected order at %d: got=%d want=%d", i, m.ID, want[i])
		}
	}
}

func TestTournamentService_ListMatches_RepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	tournamentRepo := tournamentmock.NewRepository(t)
	matchRepo := matchmock.NewRepository(t)
	service := NewTournamentService(readOnlyTx{repos: store.Repositories{Tournaments: tournamentRepo, Matches: matchRepo}})

	tournamentRepo.On("GetByID", mock.Anything, "autumn").Return(tournament.Tournament{ID: "autumn"}, true, nil).Once()
	matchRepo.On("ListByTournament", mock.Anything, "autumn").Return(nil, errors.New("connection reset")).Once()

	_, err := service.ListMatches(context.Background(), "autumn")
	if err == nil || ReasonCode(err) != ReasonInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
}
