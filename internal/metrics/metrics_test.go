package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_ObserveRequest(t *testing.T) {
	rec := NewRecorder()

	rec.ObserveRequest("GET", "/api/videojuegos/{id}", 404, 5*time.Millisecond)
	rec.ObserveRequest("GET", "/api/videojuegos/{id}", 404, 5*time.Millisecond)
	rec.ObserveRequest("GET", "", 405, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "/api/videojuegos/{id}", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "unmatched", "405")))
}

func TestRecorder_RegisterRecordCount(t *testing.T) {
	rec := NewRecorder()
	require.NoError(t, rec.RegisterRecordCount(func() float64 { return 3 }))

	// A second gauge with the same name is rejected
	assert.Error(t, rec.RegisterRecordCount(func() float64 { return 0 }))

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ludoteca_videojuegos_total 3")
}

func TestRecorder_MiddlewareUsesRoutePattern(t *testing.T) {
	rec := NewRecorder()
	r := chi.NewRouter()
	r.Use(rec.Middleware)
	r.Get("/api/videojuegos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, id := range []string{"1", "2", "3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/videojuegos/"+id, nil))
		require.Equal(t, http.StatusTeapot, w.Code)
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(rec.requests.WithLabelValues("GET", "/api/videojuegos/{id}", "418")))

	w := httptest.NewRecorder()
	rec.Handler().ServeHTTP(w, httptest.NewRequest("GET", "/metrics", nil))
	assert.True(t, strings.Contains(w.Body.String(), `ludoteca_http_request_duration_seconds_count{method="GET",route="/api/videojuegos/{id}"} 3`))
}
