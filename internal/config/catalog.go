package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Default *standing.Scheme           `yaml:"default"`
	Tiers   map[string]standing.Scheme `yaml:"tiers"`
}

// LoadCatalog reads a scoring catalog from YAML. An empty path returns the
// built-in catalog. Schemes without walkover or penalty goals inherit
// walkoverGoals.
func LoadCatalog(path string, walkoverGoals int) (standing.Catalog, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		catalog := standing.DefaultCatalog()
		return withWalkoverGoals(catalog, walkoverGoals), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return standing.Catalog{}, fmt.Errorf("read scoring schemes file: %w", err)
	}
	return ParseCatalog(raw, walkoverGoals)
}

func ParseCatalog(raw []byte, walkoverGoals int) (standing.Catalog, error) {
	var file catalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(raw))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return standing.Catalog{}, fmt.Errorf("decode scoring schemes: %w", err)
	}

	catalog := standing.Catalog{
		Default: standing.DefaultScheme(),
		ByTier:  make(map[string]standing.Scheme, len(file.Tiers)),
	}
	if file.Default != nil {
		catalog.Default = fillGoals(*file.Default, walkoverGoals)
	}
	for tier, scheme := range file.Tiers {
		key := standing.NormalizeTier(tier)
		if key == "" {
			return standing.Catalog{}, fmt.Errorf("scoring scheme tier cannot be empty")
		}
		if _, exists := catalog.ByTier[key]; exists {
			return standing.Catalog{}, fmt.Errorf("duplicate scoring scheme tier %q", key)
		}
		catalog.ByTier[key] = fillGoals(scheme, walkoverGoals)
	}

	if err := catalog.Validate(); err != nil {
		return standing.Catalog{}, err
	}
	return catalog, nil
}

func withWalkoverGoals(catalog standing.Catalog, goals int) standing.Catalog {
	if goals <= 0 {
		return catalog
	}
	catalog.Default.WalkoverGoals = goals
	for tier, scheme := range catalog.ByTier {
		scheme.WalkoverGoals = goals
		catalog.ByTier[tier] = scheme
	}
	return catalog
}

func fillGoals(scheme standing.Scheme, goals int) standing.Scheme {
	if scheme.WalkoverGoals == 0 {
		scheme.WalkoverGoals = goals
	}
	if scheme.PenaltyGoals == 0 {
		scheme.PenaltyGoals = goals
	}
	return scheme
}
