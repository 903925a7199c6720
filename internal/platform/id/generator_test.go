package id

import (
	"errors"
	"testing"

	"github.com/google/uuid"
)

type failingGenerator struct{}

func (failingGenerator) NewID() (string, error) { return "", errors.New("clock unavailable") }

func TestUUIDGenerator_NewID(t *testing.T) {
	t.Parallel()

	gen := NewUUIDGenerator()
	first, err := gen.NewID()
	if err != nil {
		t.Fatalf("NewID error: %v", err)
	}
	parsed, err := uuid.Parse(first)
	if err != nil {
		t.Fatalf("NewID returned invalid uuid %q: %v", first, err)
	}
	if parsed.Version() != 7 {
		t.Fatalf("expected version 7, got %d", parsed.Version())
	}

	second, _ := gen.NewID()
	if first == second {
		t.Fatalf("expected distinct ids")
	}
}

func TestMustNewID_FallsBack(t *testing.T) {
	t.Parallel()

	if _, err := uuid.Parse(MustNewID(failingGenerator{})); err != nil {
		t.Fatalf("fallback id must be a uuid: %v", err)
	}
	if _, err := uuid.Parse(MustNewID(nil)); err != nil {
		t.Fatalf("nil generator must still yield a uuid: %v", err)
	}
}
