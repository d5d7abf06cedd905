package monitoring

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMetricsCollector_HTTPMiddlewareUsesRoutePattern(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())

	r := chi.NewRouter()
	r.Use(m.HTTPMiddleware)
	r.Get("/recipe/{filename}", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Recipe not found", http.StatusNotFound)
	})

	for _, path := range []string{"/recipe/a.jpg", "/recipe/b.jpg"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("GET", "/recipe/{filename}", "404")))
}

func TestMetricsCollector_BusinessCounters(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())

	m.UploadOutcome("saved")
	m.UploadOutcome("saved")
	m.UploadOutcome("missing_file")
	m.RecipeLookup("not_found")
	m.DraftSaved()
	m.RecordError("CORRUPT_RECORD")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.uploadsTotal.WithLabelValues("saved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.uploadsTotal.WithLabelValues("missing_file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.recipeLookupsTotal.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.draftsSavedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.errorsTotal.WithLabelValues("CORRUPT_RECORD")))
}

func TestMetricsCollector_Handler(t *testing.T) {
	m := NewMetricsCollector(zap.NewNop())
	m.DraftSaved()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pastaboard_drafts_saved_total 1")
	assert.Contains(t, string(body), "go_goroutines")
}
