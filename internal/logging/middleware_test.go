package logging_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templatehub/template-manager/internal/logging"
)

func TestRequestLoggerAttachesLogger(t *testing.T) {
	var got *logging.Logger
	handler := logging.RequestLogger(logging.NewLogger(true))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = logging.GetLoggerFromContext(r.Context())
			w.WriteHeader(http.StatusNoContent)
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.NotNil(t, got)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRequestLoggerForwardsFlush(t *testing.T) {
	handler := logging.RequestLogger(logging.NewLogger(true))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, err := w.Write([]byte("chunk"))
			require.NoError(t, err)

			f, ok := w.(http.Flusher)
			require.True(t, ok, "wrapped writer must stay flushable")
			f.Flush()
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "chunk", rec.Body.String())
}

func TestRequestLoggerFlushBeforeWriteCommitsOK(t *testing.T) {
	handler := logging.RequestLogger(logging.NewLogger(true))(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.(http.Flusher).Flush()
			w.WriteHeader(http.StatusTeapot) // too late; headers already sent
		}),
	)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.True(t, rec.Flushed)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGetLoggerFromContextFallsBackToDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.NotNil(t, logging.GetLoggerFromContext(req.Context()))
}
