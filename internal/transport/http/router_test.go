package httptransport

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gdprkv/internal/platform/logger"
	"gdprkv/internal/platform/metrics"
	"gdprkv/internal/platform/middleware"
	"gdprkv/pkg/platform/httputil"
	"gdprkv/pkg/requestcontext"
	"gdprkv/pkg/testutil"
)

type echoHandler struct{}

func (echoHandler) Register(r chi.Router) {
	r.Get("/subjects/{subjectId}/echo", func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"request_id": middleware.GetRequestID(ctx),
			"now":        requestcontext.Now(ctx).UnixMilli(),
		})
	})
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})
}

func newRouter(ready map[string]Check) (http.Handler, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	fixed := time.Date(2025, 8, 27, 21, 15, 0, 0, time.UTC)
	return NewRouter(Deps{
		Logger:   logger.Discard(),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Clock:    func() time.Time { return fixed },
		Handlers: []Registrar{echoHandler{}},
		Ready:    ready,
	}), reg
}

func TestHealthz(t *testing.T) {
	router, _ := newRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatusOK(t, rr)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestReadyz(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		router, _ := newRouter(map[string]Check{
			"postgres": func(context.Context) error { return nil },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
		testutil.AssertStatusOK(t, rr)
		assert.JSONEq(t, `{"status":"ok","checks":{"postgres":"ok"}}`, rr.Body.String())
	})

	t.Run("a failing check reports unavailable", func(t *testing.T) {
		router, _ := newRouter(map[string]Check{
			"postgres": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("dial tcp: refused") },
		})
		rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/readyz"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
		assert.JSONEq(t, `{"status":"unavailable","checks":{"postgres":"ok","redis":"unavailable"}}`, rr.Body.String())
		assert.NotContains(t, rr.Body.String(), "refused")
	})
}

func TestRequestContext(t *testing.T) {
	router, _ := newRouter(nil)
	req := testutil.NewRequest(t, http.MethodGet, "/subjects/s1/echo")
	req.Header.Set(middleware.RequestIDHeader, "req-42")

	rr := testutil.DoRequest(router, req)

	testutil.AssertStatusOK(t, rr)
	assert.Equal(t, "req-42", rr.Header().Get(middleware.RequestIDHeader))
	testutil.AssertJSONContains(t, rr, "request_id", "req-42")
}

func TestUnknownRoute(t *testing.T) {
	router, _ := newRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/nope"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestPanicIsRecovered(t *testing.T) {
	router, _ := newRouter(nil)
	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/boom"))
	testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, "internal_error")
}

func TestMetricsEndpoint(t *testing.T) {
	router, reg := newRouter(nil)
	testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/subjects/s1/echo"))

	families, err := reg.Gather()
	require.NoError(t, err)
	var route string
	for _, f := range families {
		if f.GetName() != "gdprkv_http_request_duration_seconds" {
			continue
		}
		for _, l := range f.GetMetric()[0].GetLabel() {
			if l.GetName() == "route" {
				route = l.GetValue()
			}
		}
	}
	assert.Equal(t, "/subjects/{subjectId}/echo", route)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
	testutil.AssertStatusOK(t, rr)
	assert.True(t, strings.Contains(rr.Body.String(), "gdprkv_http_request_duration_seconds"))
}
