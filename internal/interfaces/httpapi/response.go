package httpapi

import (
	"context"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/league-engine/internal/usecase"
)

const (
	googleAPIVersion = "2.0"
	errorDomain      = "league-engine"

	internalErrorMessage = "internal server error"
)

type googleResponseEnvelope struct {
	APIVersion string           `json:"apiVersion"`
	Data       any              `json:"data,omitempty"`
	Error      *googleErrorBody `json:"error,omitempty"`
}

type googleErrorBody struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Status  string            `json:"status"`
	Errors  []googleErrorItem `json:"errors,omitempty"`
}

type googleErrorItem struct {
	Domain  string `json:"domain"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

type mappedError struct {
	HTTPStatus int
	Reason     string
	Status     string
	// Expose is false for faults whose message must stay server side.
	Expose bool
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	ctx, span := startSpan(ctx, "httpapi.writeJSON")
	defer span.End()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigDefault.NewEncoder(w).Encode(payload)
}

func writeSuccess(ctx context.Context, w http.ResponseWriter, status int, data any) {
	ctx, span := startSpan(ctx, "httpapi.writeSuccess")
	defer span.End()

	writeJSON(ctx, w, status, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Data:       data,
	})
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	ctx, span := startSpan(ctx, "httpapi.writeError")
	defer span.End()

	mapped := mapError(ctx, err)
	annotateError(ctx, mapped.Reason, mapped.HTTPStatus, err)
	message := internalErrorMessage
	if mapped.Expose {
		message = err.Error()
	}

	writeJSON(ctx, w, mapped.HTTPStatus, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    mapped.HTTPStatus,
			Message: message,
			Status:  mapped.Status,
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  mapped.Reason,
					Message: message,
				},
			},
		},
	})
}

func writeInternalError(ctx context.Context, w http.ResponseWriter) {
	ctx, span := startSpan(ctx, "httpapi.writeInternalError")
	defer span.End()

	writeJSON(ctx, w, http.StatusInternalServerError, googleResponseEnvelope{
		APIVersion: googleAPIVersion,
		Error: &googleErrorBody{
			Code:    http.StatusInternalServerError,
			Message: internalErrorMessage,
			Status:  "INTERNAL",
			Errors: []googleErrorItem{
				{
					Domain:  errorDomain,
					Reason:  usecase.ReasonInternal,
					Message: internalErrorMessage,
				},
			},
		},
	})
}

func mapError(ctx context.Context, err error) mappedError {
	_, span := startSpan(ctx, "httpapi.mapError")
	defer span.End()

	reason := usecase.ReasonCode(err)
	switch reason {
	case usecase.ReasonInvalidInput:
		return mappedError{HTTPStatus: http.StatusBadRequest, Reason: reason, Status: "INVALID_ARGUMENT", Expose: true}
	case usecase.ReasonNotFound:
		return mappedError{HTTPStatus: http.StatusNotFound, Reason: reason, Status: "NOT_FOUND", Expose: true}
	case usecase.ReasonInsufficientTeams, usecase.ReasonNoQualifiedTeams:
		return mappedError{HTTPStatus: http.StatusUnprocessableEntity, Reason: reason, Status: "FAILED_PRECONDITION", Expose: true}
	case usecase.ReasonAlreadyTerminalMatch, usecase.ReasonPlayerAlreadySanctioned:
		return mappedError{HTTPStatus: http.StatusConflict, Reason: reason, Status: "FAILED_PRECONDITION", Expose: true}
	case usecase.ReasonDuplicateFixture:
		return mappedError{HTTPStatus: http.StatusConflict, Reason: reason, Status: "ALREADY_EXISTS", Expose: true}
	case usecase.ReasonDependencyUnavailable:
		return mappedError{HTTPStatus: http.StatusServiceUnavailable, Reason: reason, Status: "UNAVAILABLE"}
	case usecase.ReasonInconsistentStandingsWrite:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: reason, Status: "INTERNAL"}
	default:
		return mappedError{HTTPStatus: http.StatusInternalServerError, Reason: usecase.ReasonInternal, Status: "INTERNAL"}
	}
}
