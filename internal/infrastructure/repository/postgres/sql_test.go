package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches named index", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &pq.Error{Code: "23505", Constraint: "suspensions_one_active_idx"})
		if !isUniqueViolation(err, "suspensions_one_active_idx") {
			t.Fatalf("expected true for wrapped unique violation")
		}
	})

	t.Run("ignores other constraint", func(t *testing.T) {
		err := &pq.Error{Code: "23505", Constraint: "matches_pkey"}
		if isUniqueViolation(err, "suspensions_one_active_idx") {
			t.Fatalf("expected false for a different constraint")
		}
	})

	t.Run("ignores other codes", func(t *testing.T) {
		err := &pq.Error{Code: "23503", Constraint: "suspensions_one_active_idx"}
		if isUniqueViolation(err, "") {
			t.Fatalf("expected false for foreign key violation")
		}
	})

	t.Run("ignores plain errors", func(t *testing.T) {
		if isUniqueViolation(errors.New("duplicate key"), "") {
			t.Fatalf("expected false for non pq error")
		}
	})
}

func TestIsNotFound(t *testing.T) {
	if !isNotFound(fmt.Errorf("get: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped ErrNoRows to be not found")
	}
	if isNotFound(errors.New("boom")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestNullTimeConversions(t *testing.T) {
	if got := nullTimeToTime(sql.NullTime{}); !got.IsZero() {
		t.Fatalf("expected zero time for null, got %v", got)
	}
	if got := nullTimeToTimePtr(sql.NullTime{}); got != nil {
		t.Fatalf("expected nil for null, got %v", got)
	}
	if got := timeToNull(time.Time{}); got.Valid {
		t.Fatalf("expected zero time to be stored as null")
	}

	local := time.Date(2026, 3, 7, 15, 0, 0, 0, time.FixedZone("WIB", 7*3600))
	stored := timeToNull(local)
	if !stored.Valid || stored.Time.Location() != time.UTC || !stored.Time.Equal(local) {
		t.Fatalf("unexpected stored time: %+v", stored)
	}
}
