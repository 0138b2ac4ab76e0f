package server

import (
	"context"
	"io"
	"log"
	"net/http"
)

// handleJobSearch is a pure pass-through to the configured third-party job
// search API. The query string is forwarded verbatim and the JSON body is
// relayed without transformation.
func (s *Server) handleJobSearch(w http.ResponseWriter, r *http.Request) {
	if s.cfg.JobSearchURL == "" {
		s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
			"status": "error",
			"error":  "job search upstream is not configured",
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.cfg.JobSearchTimeout)
	defer cancel()

	upstreamURL := s.cfg.JobSearchURL
	if r.URL.RawQuery != "" {
		upstreamURL += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, upstreamURL, nil)
	if err != nil {
		s.jsonResponse(w, http.StatusInternalServerError, map[string]string{
			"status": "error",
			"error":  "internal server error",
		})
		return
	}
	if s.cfg.JobSearchAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.JobSearchAPIKey)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		status := http.StatusBadGateway
		if ctx.Err() == context.DeadlineExceeded {
			status = http.StatusGatewayTimeout
		}
		s.jsonResponse(w, status, map[string]string{
			"status": "error",
			"error":  "job search upstream request failed",
		})
		return
	}
	defer func() { _ = resp.Body.Close() }()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		log.Printf("error relaying job search response: %v", err)
	}
}
