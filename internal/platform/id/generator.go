package id

import (
	"fmt"

	"github.com/google/uuid"
)

// Generator creates opaque IDs for request and message correlation.
type Generator interface {
	NewID() (string, error)
}

// UUIDGenerator issues time-ordered UUIDv7 strings.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return v.String(), nil
}

// MustNewID falls back to a random v4 UUID when the v7 clock read fails.
func MustNewID(g Generator) string {
	if g != nil {
		if v, err := g.NewID(); err == nil {
			return v
		}
	}
	return uuid.NewString()
}
