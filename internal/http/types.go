package http

import "github.com/fyrsmithlabs/folio/internal/diagnose"

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// PatternRequest is the body for creating, updating or converting into a pattern.
type PatternRequest struct {
	Keywords           []string            `json:"keywords"`
	PossibleCauses     []string            `json:"possibleCauses"`
	DebugSteps         []string            `json:"debugSteps"`
	Complexity         diagnose.Complexity `json:"complexity"`
	RecommendedService string              `json:"recommendedService"`
}

func (r PatternRequest) toPattern() diagnose.IssuePattern {
	return diagnose.IssuePattern{
		Keywords:           r.Keywords,
		PossibleCauses:     r.PossibleCauses,
		DebugSteps:         r.DebugSteps,
		Complexity:         r.Complexity,
		RecommendedService: r.RecommendedService,
	}
}

// PatternListResponse is the response body for GET /api/admin/patterns.
type PatternListResponse struct {
	Patterns []diagnose.IssuePattern `json:"patterns"`
	Count    int                     `json:"count"`
}

// LogListResponse is the response body for GET /api/admin/diagnostics.
type LogListResponse struct {
	Diagnostics []diagnose.DiagnosticLog `json:"diagnostics"`
	Count       int                      `json:"count"`
}

// User-facing error messages.
const (
	msgInvalidBody     = "Invalid request body"
	msgTooManyRequests = "Too many requests"
	msgInternal        = "Internal server error"
	msgNotFound        = "Not found"
	msgUnauthorized    = "Unauthorized"
)
