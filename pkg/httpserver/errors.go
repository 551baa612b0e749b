package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/snow-ghost/interviewer/core"
	"github.com/snow-ghost/interviewer/interview"
)

// Error codes returned in the "code" field.
const (
	CodeInvalidJSON        = "invalid_json"
	CodeInvalidInput       = "invalid_input"
	CodeUnknownTopic       = "unknown_topic"
	CodeSessionNotFound    = "session_not_found"
	CodeInterviewComplete  = "interview_complete"
	CodeReportNotReady     = "report_not_ready"
	CodeEvaluationDisabled = "evaluation_disabled"
	CodeInternal           = "internal"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// classify maps a service error to an HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrUnknownTopic):
		return http.StatusBadRequest, CodeUnknownTopic
	case errors.Is(err, core.ErrInvalidInput):
		return http.StatusBadRequest, CodeInvalidInput
	case errors.Is(err, core.ErrSessionNotFound):
		return http.StatusNotFound, CodeSessionNotFound
	case errors.Is(err, core.ErrInterviewComplete):
		return http.StatusConflict, CodeInterviewComplete
	case errors.Is(err, core.ErrReportNotReady):
		return http.StatusAccepted, CodeReportNotReady
	case errors.Is(err, interview.ErrEvaluationDisabled):
		return http.StatusServiceUnavailable, CodeEvaluationDisabled
	}
	return http.StatusInternalServerError, CodeInternal
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, message, code string, status int) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
