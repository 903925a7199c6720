package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/league-engine/internal/domain/bracket"
	"github.com/riskibarqy/league-engine/internal/domain/discipline"
	"github.com/riskibarqy/league-engine/internal/domain/fixture"
	"github.com/riskibarqy/league-engine/internal/domain/match"
	"github.com/riskibarqy/league-engine/internal/domain/standing"
	"github.com/riskibarqy/league-engine/internal/usecase"
)

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) googleResponseEnvelope {
	t.Helper()

	var body googleResponseEnvelope
	if err := sonic.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal response body: %v", err)
	}
	if body.APIVersion != googleAPIVersion {
		t.Fatalf("expected apiVersion=%s, got %q", googleAPIVersion, body.APIVersion)
	}
	return body
}

func TestWriteSuccess_DataOnly(t *testing.T) {
	rec := httptest.NewRecorder()
	writeSuccess(context.Background(), rec, http.StatusCreated, map[string]int{"created": 3})

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("unexpected content type %q", ct)
	}

	body := decodeEnvelope(t, rec)
	if body.Data == nil {
		t.Fatalf("expected data in success response")
	}
	if body.Error != nil {
		t.Fatalf("did not expect error in success response, got %+v", body.Error)
	}
}

func TestWriteError_ReasonMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   int
		wantStatus string
		wantReason string
		exposed    bool
	}{
		{"invalid input", fmt.Errorf("%w: round_trips must be 1 or 2", usecase.ErrInvalidInput), http.StatusBadRequest, "INVALID_ARGUMENT", usecase.ReasonInvalidInput, true},
		{"invalid passes", fixture.ErrInvalidPasses, http.StatusBadRequest, "INVALID_ARGUMENT", usecase.ReasonInvalidInput, true},
		{"unknown level", bracket.ErrUnknownClassificationLevel, http.StatusBadRequest, "INVALID_ARGUMENT", usecase.ReasonInvalidInput, true},
		{"not found", fmt.Errorf("%w: match 42", usecase.ErrNotFound), http.StatusNotFound, "NOT_FOUND", usecase.ReasonNotFound, true},
		{"too few teams", fixture.ErrInsufficientTeams, http.StatusUnprocessableEntity, "FAILED_PRECONDITION", usecase.ReasonInsufficientTeams, true},
		{"nobody qualified", bracket.ErrNoQualifiedTeams, http.StatusUnprocessableEntity, "FAILED_PRECONDITION", usecase.ReasonNoQualifiedTeams, true},
		{"terminal match", match.ErrAlreadyTerminal, http.StatusConflict, "FAILED_PRECONDITION", usecase.ReasonAlreadyTerminalMatch, true},
		{"sanctioned", discipline.ErrPlayerAlreadySanctioned, http.StatusConflict, "FAILED_PRECONDITION", usecase.ReasonPlayerAlreadySanctioned, true},
		{"duplicate fixture", usecase.ErrDuplicateFixture, http.StatusConflict, "ALREADY_EXISTS", usecase.ReasonDuplicateFixture, true},
		{"store down", fmt.Errorf("%w: dial tcp", usecase.ErrDependencyUnavailable), http.StatusServiceUnavailable, "UNAVAILABLE", usecase.ReasonDependencyUnavailable, false},
		{"inconsistent row", standing.ErrInconsistentWrite, http.StatusInternalServerError, "INTERNAL", usecase.ReasonInconsistentStandingsWrite, false},
		{"anything else", errors.New("pq: relation does not exist"), http.StatusInternalServerError, "INTERNAL", usecase.ReasonInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(context.Background(), rec, tt.err)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected status %d, got %d", tt.wantCode, rec.Code)
			}

			body := decodeEnvelope(t, rec)
			if body.Data != nil {
				t.Fatalf("did not expect data in error response")
			}
			if body.Error == nil {
				t.Fatalf("expected error object in response")
			}
			if body.Error.Code != tt.wantCode {
				t.Fatalf("expected error code %d, got %d", tt.wantCode, body.Error.Code)
			}
			if body.Error.Status != tt.wantStatus {
				t.Fatalf("expected error status %s, got %s", tt.wantStatus, body.Error.Status)
			}
			if len(body.Error.Errors) != 1 || body.Error.Errors[0].Reason != tt.wantReason {
				t.Fatalf("expected reason %s, got %+v", tt.wantReason, body.Error.Errors)
			}
			if body.Error.Errors[0].Domain != errorDomain {
				t.Fatalf("expected domain %s, got %s", errorDomain, body.Error.Errors[0].Domain)
			}

			wantMessage := internalErrorMessage
			if tt.exposed {
				wantMessage = tt.err.Error()
			}
			if body.Error.Message != wantMessage {
				t.Fatalf("expected message %q, got %q", wantMessage, body.Error.Message)
			}
		})
	}
}

func TestWriteInternalError_HidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeInternalError(context.Background(), rec)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	body := decodeEnvelope(t, rec)
	if body.Error == nil || body.Error.Message != internalErrorMessage {
		t.Fatalf("unexpected error body %+v", body.Error)
	}
	if body.Error.Errors[0].Reason != usecase.ReasonInternal {
		t.Fatalf("expected reason %s, got %s", usecase.ReasonInternal, body.Error.Errors[0].Reason)
	}
}
