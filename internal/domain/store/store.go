package store

import (
	"context"

	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/player"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

// Repositories bundles every repository the engine writes through.
type Repositories struct {
	Tournaments tournament.Repository
	Groups      tournament.GroupRepository
	Players     player.Repository
	Standings   standing.Repository
	Matches     match.Repository
	Events      discipline.EventRepository
	Suspensions discipline.SuspensionRepository
}

// TxRunner runs a unit of work atomically. Repositories passed to fn are bound
// to the transaction; the result of Repositories() is not.
type TxRunner interface {
	Repositories() Repositories
	WithinTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
}
