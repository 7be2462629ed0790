package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(GetClientFromContext(r.Context())))
	})
}

func TestAPIKeyAuth(t *testing.T) {
	t.Parallel()

	h := APIKeyAuth(map[string]string{"dashboard": "s3cret"})(okHandler())
	cases := []struct {
		name   string
		path   string
		header string
		want   int
		body   string
	}{
		{"public health", "/health", "", http.StatusOK, ""},
		{"missing", "/v1/checks", "", http.StatusUnauthorized, ""},
		{"wrong", "/v1/checks", "Bearer nope", http.StatusUnauthorized, ""},
		{"bearer", "/v1/checks", "Bearer s3cret", http.StatusOK, "dashboard"},
		{"bare", "/v1/checks", "s3cret", http.StatusOK, "dashboard"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, tc.path, nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tc.want {
			t.Fatalf("%s: status %d want %d", tc.name, rec.Code, tc.want)
		}
		if tc.body != "" && rec.Body.String() != tc.body {
			t.Fatalf("%s: body %q want %q", tc.name, rec.Body.String(), tc.body)
		}
	}
}

func TestAPIKeyAuthQueryParamAndDisabled(t *testing.T) {
	t.Parallel()

	h := APIKeyAuth(map[string]string{"dashboard": "s3cret"})(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/v1/stream?api_key=s3cret", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("query key should authenticate, got %d", rec.Code)
	}

	open := APIKeyAuth(nil)(okHandler())
	rec = httptest.NewRecorder()
	open.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/checks", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("empty key map should disable auth, got %d", rec.Code)
	}
}

func TestRateLimitBlocksAfterCapacity(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(2, 0)
	defer limiter.Stop()
	h := RateLimit(limiter)(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
		req.RemoteAddr = "10.0.0.1:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}

	// other port, same host: same bucket
	req := httptest.NewRequest(http.MethodPost, "/v1/checks/run", nil)
	req.RemoteAddr = "10.0.0.1:6666"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same host should share a bucket, got %d", rec.Code)
	}
}

func TestValidateCheckID(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"xss", "sql-injection", "security_headers", "a1"} {
		if err := ValidateCheckID(ok); err != nil {
			t.Fatalf("%q should be valid: %v", ok, err)
		}
	}
	for _, bad := range []string{"", "XSS", "../etc", "-lead", "a b"} {
		if err := ValidateCheckID(bad); err == nil {
			t.Fatalf("%q should be invalid", bad)
		}
	}
}

func TestValidateLimit(t *testing.T) {
	t.Parallel()

	if ValidateLimit(0) != 20 || ValidateLimit(500) != 100 || ValidateLimit(7) != 7 {
		t.Fatalf("unexpected limit clamping")
	}
}

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	down := map[string]HealthChecker{
		"journal": HealthCheckerFunc(func(context.Context) error { return errors.New("down") }),
	}
	h := HealthHandler(down, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	ReadinessHandler(down).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz: expected 503, got %d", rec.Code)
	}

	h = HealthHandler(nil, func() EngineStatus {
		return EngineStatus{Checks: 5, Busy: true, Current: "xss", ByStatus: map[string]int{"running": 1, "idle": 4}}
	})
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body HealthStatus
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Engine == nil || !body.Engine.Busy || body.Engine.Current != "xss" {
		t.Fatalf("engine status missing: %+v", body.Engine)
	}
}
