package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-transformer/internal/llm"
)

func TestJobSearch_NotConfigured(t *testing.T) {
	s := newTestServer(&stubGateway{configured: map[llm.Provider]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/search?query=golang", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not configured")
}

func TestJobSearch_PassThrough(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "query=golang+engineer&location=remote", r.URL.RawQuery)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[{"title":"Backend Engineer"}]}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.JobSearchURL = upstream.URL
	cfg.JobSearchAPIKey = "test-key"
	s := New(cfg, &stubGateway{configured: map[llm.Provider]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/search?query=golang+engineer&location=remote", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[{"title":"Backend Engineer"}]}`, w.Body.String())
}

func TestJobSearch_UpstreamErrorRelayed(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer upstream.Close()

	cfg := testConfig()
	cfg.JobSearchURL = upstream.URL
	s := New(cfg, &stubGateway{configured: map[llm.Provider]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/search", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "rate limited")
}

func TestJobSearch_UnreachableUpstream(t *testing.T) {
	cfg := testConfig()
	cfg.JobSearchURL = "http://127.0.0.1:1"
	s := New(cfg, &stubGateway{configured: map[llm.Provider]bool{}})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/search", nil)
	w := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "upstream request failed")
}
