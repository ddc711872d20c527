package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fieldops-hq/fieldops/pkg/composables"
	"github.com/fieldops-hq/fieldops/pkg/middleware"
)

func TestWithLogger_CarriesRequestParams(t *testing.T) {
	logger, hook := test.NewNullLogger()

	router := mux.NewRouter()
	router.Use(middleware.RequestParams(), middleware.WithLogger(logger))
	router.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		params, ok := composables.UseParams(r.Context())
		require.True(t, ok)
		assert.Equal(t, "203.0.113.9", params.IP)
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("X-Real-IP", "203.0.113.9")
	req.Header.Set("User-Agent", "fieldops-test")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "request completed", entry.Message)
	assert.Equal(t, "203.0.113.9", entry.Data["ip"])
	assert.Equal(t, "fieldops-test", entry.Data["user_agent"])
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestWithLogger_RequestIDFromHeader(t *testing.T) {
	logger, hook := test.NewNullLogger()

	router := mux.NewRouter()
	router.Use(middleware.WithLogger(logger))
	router.HandleFunc("/jobs", func(w http.ResponseWriter, r *http.Request) {
		entry, ok := composables.TryUseLogger(r.Context())
		require.True(t, ok)
		assert.Equal(t, "req-42", entry.Data["request_id"])
	})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.Header.Set("X-Request-ID", "req-42")
	router.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, "req-42", entry.Data["request_id"])
}
