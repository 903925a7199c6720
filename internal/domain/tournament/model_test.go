package tournament

import (
	"testing"
	"time"
)

func TestTournament_RoundDate(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 3, 1, 15, 0, 0, 0, time.UTC)
	tour := Tournament{StartsAt: start, RoundInterval: 7 * 24 * time.Hour}

	if got := tour.RoundDate(1); !got.Equal(start) {
		t.Fatalf("round 1 = %v, want %v", got, start)
	}
	if got, want := tour.RoundDate(3), start.AddDate(0, 0, 14); !got.Equal(want) {
		t.Fatalf("round 3 = %v, want %v", got, want)
	}
	if got := (Tournament{}).RoundDate(2); !got.IsZero() {
		t.Fatalf("expected zero date without calendar, got %v", got)
	}
}

func TestTournament_Validate(t *testing.T) {
	t.Parallel()

	valid := Tournament{ID: "t1", Name: "Spring Cup", RoundTrips: 1, SanctionDuration: 1}
	if err := valid.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	invalid := valid
	invalid.RoundTrips = 3
	if err := invalid.Validate(); err == nil {
		t.Fatalf("expected error for round trips=3")
	}
}
