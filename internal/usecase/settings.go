package usecase

import (
	"context"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/domain/tournament"
)

// Settings are engine-wide defaults a tournament may override.
type Settings struct {
	Catalog                   standing.Catalog
	DefaultSanctionDuration   int
	// DefaultYellowThreshold <= 0 disables suspensions for accumulated yellows.
	DefaultYellowThreshold    int
	DefaultQualifiersPerGroup int
}

func DefaultSettings() Settings {
	return Settings{
		Catalog:                   standing.DefaultCatalog(),
		DefaultSanctionDuration:   1,
		DefaultYellowThreshold:    2,
		DefaultQualifiersPerGroup: 2,
	}
}

func (s Settings) scheme(t tournament.Tournament) standing.Scheme {
	return s.Catalog.For(t.Category)
}

func (s Settings) sanctionDuration(t tournament.Tournament) int {
	if t.SanctionDuration > 0 {
		return t.SanctionDuration
	}
	if s.DefaultSanctionDuration > 0 {
		return s.DefaultSanctionDuration
	}
	return 1
}

func (s Settings) yellowThreshold(t tournament.Tournament) int {
	if t.YellowThreshold > 0 {
		return t.YellowThreshold
	}
	return s.DefaultYellowThreshold
}

// EventPublisher hands notifications to an asynchronous collaborator. It must
// not block on delivery.
type EventPublisher interface {
	Publish(ctx context.Context, topic, key string, payload any)
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, string, string, any) {}
