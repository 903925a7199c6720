//go:build integration

package postgres_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/sync/errgroup"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/league-engine/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
	"github.com/riskibarqy/league-engine/internal/platform/metrics"
	"github.com/riskibarqy/league-engine/internal/usecase"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("league_engine"),
		tcpostgres.WithUsername("league"),
		tcpostgres.WithPassword("league"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	require.NoError(t, err)

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	require.NoError(t, postgres.MigrateUp(dsn))

	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close()
	})

	require.NoError(t, postgres.BootstrapSeed(ctx, db))
	// Seeding twice must not duplicate rows.
	require.NoError(t, postgres.BootstrapSeed(ctx, db))
	return db
}

func TestStore_TournamentFlow(t *testing.T) {
	db := setupPostgres(t)
	ctx := t.Context()

	st := postgres.NewStore(db)
	logger := logging.NewNop()
	recorder := metrics.NewRecorder("postgres_it")
	settings := usecase.DefaultSettings()

	fixtures := usecase.NewFixtureService(st, nil, recorder, logger)
	results := usecase.NewResultService(st, settings, nil, recorder, logger)
	disciplines := usecase.NewDisciplineService(st, settings, nil, recorder, logger)
	standings := usecase.NewStandingService(st, settings, logger)

	generated, err := fixtures.GenerateFixtures(ctx, memory.TournamentIDSpringCup)
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeApplied, generated.Outcome)
	require.NotEmpty(t, generated.Matches)

	again, err := fixtures.GenerateFixtures(ctx, memory.TournamentIDSpringCup)
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeNoOp, again.Outcome)

	var played []match.Match
	for _, m := range generated.Matches {
		if m.GroupID == "group-a" && m.AwayTeamID != "" {
			played = append(played, m)
		}
	}
	require.GreaterOrEqual(t, len(played), 2)
	first, second := played[0], played[1]

	res, err := results.RecordMatchEnd(ctx, usecase.RecordMatchEndInput{MatchID: first.ID, HomeGoals: 2, AwayGoals: 1})
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeApplied, res.Outcome)

	repeat, err := results.RecordMatchEnd(ctx, usecase.RecordMatchEndInput{MatchID: first.ID, HomeGoals: 2, AwayGoals: 1})
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeAlreadyTerminal, repeat.Outcome)

	table, err := standings.ListGroup(ctx, memory.TournamentIDSpringCup, "group-a")
	require.NoError(t, err)
	points := map[string]int{}
	for _, record := range table.Records {
		require.Equal(t, record.Played, record.Won+record.Drawn+record.Lost)
		require.Equal(t, record.GoalDifference, record.GoalsFor-record.GoalsAgainst)
		points[record.TeamID] = record.Points
	}
	require.Equal(t, 3, points[first.HomeTeamID])
	require.Equal(t, 0, points[first.AwayTeamID])

	stored, found, err := st.Repositories().Matches.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, match.StatusFinished, stored.Status)
	require.NotNil(t, stored.Score)
	require.Equal(t, 2, stored.Score.Home)

	offender := second.HomeTeamID + "-p1"
	ingested, err := disciplines.IngestEvent(ctx, usecase.IngestEventInput{
		MatchID:  second.ID,
		PlayerID: offender,
		Type:     discipline.EventRedCard,
		Minute:   30,
	})
	require.NoError(t, err)
	require.NotNil(t, ingested.Suspension)

	active, ok, err := st.Repositories().Suspensions.GetActive(ctx, memory.TournamentIDSpringCup, offender)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, second.ID, active.OriginMatchID)

	cancelled, err := results.RecordCancellation(ctx, first.ID, "pitch flooded")
	require.NoError(t, err)
	require.Equal(t, usecase.OutcomeAlreadyTerminal, cancelled.Outcome)
}

func TestStore_ConcurrentWritersAreSerialized(t *testing.T) {
	db := setupPostgres(t)
	ctx := t.Context()

	st := postgres.NewStore(db)
	logger := logging.NewNop()
	recorder := metrics.NewRecorder("postgres_it_concurrent")
	fixtures := usecase.NewFixtureService(st, nil, recorder, logger)
	disciplines := usecase.NewDisciplineService(st, usecase.DefaultSettings(), nil, recorder, logger)

	const callers = 4
	outcomes := make([]usecase.Outcome, callers)
	var g errgroup.Group
	for i := range callers {
		g.Go(func() error {
			res, err := fixtures.GenerateFixtures(ctx, memory.TournamentIDSpringCup)
			outcomes[i] = res.Outcome
			return err
		})
	}
	require.NoError(t, g.Wait())

	applied := 0
	for _, outcome := range outcomes {
		if outcome == usecase.OutcomeApplied {
			applied++
		}
	}
	require.Equal(t, 1, applied)

	stored, err := st.Repositories().Matches.ListByTournament(ctx, memory.TournamentIDSpringCup)
	require.NoError(t, err)
	pairs := make(map[string]int)
	var target match.Match
	for _, m := range stored {
		if m.AwayTeamID == "" {
			continue
		}
		pairs[m.GroupID+"/"+m.HomeTeamID+"/"+m.AwayTeamID]++
		if target.ID == 0 && m.GroupID == "group-a" {
			target = m
		}
	}
	for pair, count := range pairs {
		require.Equal(t, 1, count, "pair %s generated more than once", pair)
	}
	require.NotZero(t, target.ID)

	booked := target.HomeTeamID + "-p1"
	results := make([]usecase.IngestEventResult, 2)
	for i := range results {
		g.Go(func() error {
			res, err := disciplines.IngestEvent(ctx, usecase.IngestEventInput{
				MatchID:  target.ID,
				PlayerID: booked,
				Type:     discipline.EventYellowCard,
				Minute:   20 + i,
			})
			results[i] = res
			return err
		})
	}
	require.NoError(t, g.Wait())

	suspended := 0
	for _, res := range results {
		if res.Suspension != nil {
			suspended++
		}
	}
	require.Equal(t, 1, suspended, "exactly one of two yellows in a match must suspend")

	active, ok, err := st.Repositories().Suspensions.GetActive(ctx, memory.TournamentIDSpringCup, booked)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, target.ID, active.OriginMatchID)
}
