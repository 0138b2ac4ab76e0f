// Package server provides the HTTP REST API for the resume transformer.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/resume-transformer/internal/ingestion"
	"github.com/jonathan/resume-transformer/internal/llm"
	"github.com/jonathan/resume-transformer/internal/pipeline"
)

// ExtractionError reports a document that could not be converted to text,
// attributed to the specific document slot (resume vs. job description).
type ExtractionError struct {
	Document string // "resume" or "job description"
	Detail   string
}

func (e *ExtractionError) Error() string {
	return e.Document + " file error: " + e.Detail
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Validation and extraction problems are the caller's fault; a missing
// provider is operator misconfiguration and maps to 503, distinct from a
// genuine upstream failure.
func HTTPStatus(err error) int {
	var validation *ingestion.ValidationError
	var missingSection *pipeline.MissingSectionError
	var extraction *ExtractionError
	var notConfigured *llm.NotConfiguredError
	var upstream *llm.UpstreamError

	switch {
	case errors.As(err, &validation), errors.As(err, &missingSection), errors.As(err, &extraction):
		return http.StatusBadRequest
	case errors.As(err, &notConfigured):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		if upstream.Timeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
