package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatusClass(t *testing.T) {
	tc := []struct {
		code int
		want string
	}{
		{code: 200, want: "2xx"},
		{code: 201, want: "2xx"},
		{code: 302, want: "3xx"},
		{code: 401, want: "401"},
		{code: 404, want: "4xx"},
		{code: 503, want: "5xx"},
		{code: 0, want: "error"},
	}

	for _, tt := range tc {
		if got := StatusClass(tt.code); got != tt.want {
			t.Errorf("StatusClass(%d) = %s, want %s", tt.code, got, tt.want)
		}
	}
}

func TestMiddleware(t *testing.T) {
	h := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/teapot", "418"))
	if after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status 418, got %d", rec.Code)
	}
}
