package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/pool"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/store"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
	"github.com/riskibarqy/league-engine/internal/platform/logging"
)

const maxConcurrentGroupReads = 4

// GroupStandings is a group table in rank order.
type GroupStandings struct {
	Group   tournament.Group
	Records []standing.Record
}

type StandingService struct {
	tx       store.TxRunner
	settings Settings
	logger   *logging.Logger
}

func NewStandingService(tx store.TxRunner, settings Settings, logger *logging.Logger) *StandingService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StandingService{tx: tx, settings: settings, logger: logger}
}

func (s *StandingService) ListGroup(ctx context.Context, tournamentID, groupID string) (GroupStandings, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	groupID = strings.TrimSpace(groupID)
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.ListGroup",
		attribute.String("tournament.id", tournamentID),
		attribute.String("group.id", groupID),
	)
	defer span.End()

	if tournamentID == "" || groupID == "" {
		return GroupStandings{}, fmt.Errorf("%w: tournament id and group id are required", ErrInvalidInput)
	}

	repos := s.tx.Repositories()
	g, exists, err := repos.Groups.GetByID(ctx, tournamentID, groupID)
	if err != nil {
		recordSpanError(span, err)
		return GroupStandings{}, fmt.Errorf("get group: %w", err)
	}
	if !exists {
		return GroupStandings{}, fmt.Errorf("%w: group=%s/%s", ErrNotFound, tournamentID, groupID)
	}

	out, err := groupTable(ctx, repos, g)
	recordSpanError(span, err)
	return out, err
}

// ListTournament returns every group table of a tournament in group order.
func (s *StandingService) ListTournament(ctx context.Context, tournamentID string) ([]GroupStandings, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.ListTournament", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}

	repos := s.tx.Repositories()
	if _, exists, err := repos.Tournaments.GetByID(ctx, tournamentID); err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("get tournament: %w", err)
	} else if !exists {
		return nil, fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
	}

	groups, err := repos.Groups.ListByTournament(ctx, tournamentID)
	if err != nil {
		recordSpanError(span, err)
		return nil, fmt.Errorf("list groups: %w", err)
	}
	order := make(map[string]int, len(groups))
	for i, g := range groups {
		order[g.ID] = i
	}

	p := pool.NewWithResults[GroupStandings]().
		WithMaxGoroutines(maxConcurrentGroupReads).
		WithContext(ctx).
		WithCancelOnError()
	for _, g := range groups {
		p.Go(func(ctx context.Context) (GroupStandings, error) {
			return groupTable(ctx, repos, g)
		})
	}
	tables, err := p.Wait()
	if err != nil {
		recordSpanError(span, err)
		s.logger.ErrorContext(ctx, "list tournament standings failed", "tournament_id", tournamentID, "error", err)
		return nil, err
	}

	sort.Slice(tables, func(i, j int) bool {
		return order[tables[i].Group.ID] < order[tables[j].Group.ID]
	})
	return tables, nil
}

// QualifyGroups marks the top perGroup teams of every group as qualified and
// clears the flag for the rest. perGroup <= 0 uses the configured default.
func (s *StandingService) QualifyGroups(ctx context.Context, tournamentID string, perGroup int) ([]GroupStandings, error) {
	tournamentID = strings.TrimSpace(tournamentID)
	ctx, span := startUsecaseSpan(ctx, "usecase.StandingService.QualifyGroups", attribute.String("tournament.id", tournamentID))
	defer span.End()

	if tournamentID == "" {
		return nil, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if perGroup <= 0 {
		perGroup = s.settings.DefaultQualifiersPerGroup
	}
	if perGroup <= 0 {
		return nil, fmt.Errorf("%w: qualifiers per group must be > 0", ErrInvalidInput)
	}

	var out []GroupStandings
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos store.Repositories) error {
		if _, exists, err := repos.Tournaments.GetByID(ctx, tournamentID); err != nil {
			return fmt.Errorf("get tournament: %w", err)
		} else if !exists {
			return fmt.Errorf("%w: tournament=%s", ErrNotFound, tournamentID)
		}

		groups, err := repos.Groups.ListByTournament(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("list groups: %w", err)
		}
		for _, g := range groups {
			table, err := groupTable(ctx, repos, g)
			if err != nil {
				return err
			}
			for i := range table.Records {
				qualified := i < perGroup
				if err := repos.Standings.SetQualified(ctx, table.Records[i].Key(), qualified); err != nil {
					return fmt.Errorf("set qualified %s: %w", table.Records[i].Key(), err)
				}
				table.Records[i].Qualified = qualified
			}
			out = append(out, table)
		}
		return nil
	})
	if err != nil {
		recordSpanError(span, err)
		s.logger.WarnContext(ctx, "qualify groups rejected", "tournament_id", tournamentID, "reason", ReasonCode(err), "error", err)
		return nil, err
	}

	s.logger.InfoContext(ctx, "groups qualified", "tournament_id", tournamentID, "groups", len(out), "per_group", perGroup)
	return out, nil
}

func groupTable(ctx context.Context, repos store.Repositories, g tournament.Group) (GroupStandings, error) {
	records, err := repos.Standings.ListByGroup(ctx, g.TournamentID, g.ID)
	if err != nil {
		return GroupStandings{}, fmt.Errorf("list standings group=%s: %w", g.ID, err)
	}
	return GroupStandings{Group: g, Records: standing.Rank(records)}, nil
}
