package standing

import (
	"fmt"
	"strings"
)

// Bonus carries the per-team flags a scheme may reward independently of the outcome.
type Bonus struct {
	Protocol bool `json:"protocol"`
	Conduct  bool `json:"conduct"`
}

// Scheme is the points table applied to one tournament category.
type Scheme struct {
	Win           int `yaml:"win"`
	Draw          int `yaml:"draw"`
	Loss          int `yaml:"loss"`
	ProtocolBonus int `yaml:"protocol_bonus"`
	ConductBonus  int `yaml:"conduct_bonus"`
	WalkoverGoals int `yaml:"walkover_goals"`
	PenaltyGoals  int `yaml:"penalty_goals"`
}

func DefaultScheme() Scheme {
	return Scheme{
		Win:           3,
		Draw:          1,
		Loss:          0,
		WalkoverGoals: 3,
		PenaltyGoals:  3,
	}
}

func (s Scheme) BonusPoints(b Bonus) int {
	points := 0
	if b.Protocol {
		points += s.ProtocolBonus
	}
	if b.Conduct {
		points += s.ConductBonus
	}
	return points
}

func (s Scheme) Validate() error {
	if s.Win < s.Draw || s.Draw < s.Loss {
		return fmt.Errorf("scheme must satisfy win >= draw >= loss, got %d/%d/%d", s.Win, s.Draw, s.Loss)
	}
	if s.ProtocolBonus < 0 || s.ConductBonus < 0 {
		return fmt.Errorf("bonus points must be >= 0")
	}
	if s.WalkoverGoals <= 0 {
		return fmt.Errorf("walkover goals must be > 0")
	}
	if s.PenaltyGoals <= 0 {
		return fmt.Errorf("penalty goals must be > 0")
	}
	return nil
}

// Catalog maps a tournament category to its scheme.
type Catalog struct {
	Default Scheme
	ByTier  map[string]Scheme
}

// DefaultCatalog mirrors the two schemes in use: youth tiers play for 2 points
// a win and earn protocol and conduct bonuses, every other tier plays 3/1/0.
func DefaultCatalog() Catalog {
	youth := Scheme{
		Win:           2,
		Draw:          1,
		Loss:          0,
		ProtocolBonus: 2,
		ConductBonus:  2,
		WalkoverGoals: 3,
		PenaltyGoals:  3,
	}
	return Catalog{
		Default: DefaultScheme(),
		ByTier: map[string]Scheme{
			"youth": youth,
		},
	}
}

func (c Catalog) For(tier string) Scheme {
	if scheme, ok := c.ByTier[NormalizeTier(tier)]; ok {
		return scheme
	}
	return c.Default
}

func (c Catalog) Validate() error {
	if err := c.Default.Validate(); err != nil {
		return fmt.Errorf("default scheme: %w", err)
	}
	for tier, scheme := range c.ByTier {
		if err := scheme.Validate(); err != nil {
			return fmt.Errorf("scheme %q: %w", tier, err)
		}
	}
	return nil
}

// NormalizeTier is the catalog key form of a tournament category.
func NormalizeTier(tier string) string {
	return strings.ToLower(strings.TrimSpace(tier))
}
