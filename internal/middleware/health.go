package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"
)

// HealthChecker is one dependency probed by /health and /readyz.
type HealthChecker interface {
	Check(ctx context.Context) error
}

type HealthCheckerFunc func(ctx context.Context) error

func (f HealthCheckerFunc) Check(ctx context.Context) error { return f(ctx) }

// DatabaseHealthChecker pings the journal database
type DatabaseHealthChecker struct {
	DB *sql.DB
}

func (d *DatabaseHealthChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return d.DB.PingContext(ctx)
}

// EngineStatus is what the check engine looks like right now.
type EngineStatus struct {
	Checks   int            `json:"checks"`
	Busy     bool           `json:"busy"`
	Current  string         `json:"current,omitempty"`
	ByStatus map[string]int `json:"by_status"`
}

type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Engine    *EngineStatus          `json:"engine,omitempty"`
}

// CheckStatus represents one dependency's status
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func runCheckers(ctx context.Context, checkers map[string]HealthChecker) (map[string]CheckStatus, bool) {
	out := make(map[string]CheckStatus, len(checkers))
	healthy := true
	for name, checker := range checkers {
		if err := checker.Check(ctx); err != nil {
			healthy = false
			out[name] = CheckStatus{Status: "unhealthy", Message: err.Error()}
			continue
		}
		out[name] = CheckStatus{Status: "healthy"}
	}
	return out, healthy
}

// HealthHandler reports every dependency plus the engine snapshot.
// engine may be nil.
func HealthHandler(checkers map[string]HealthChecker, engine func() EngineStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		deps, healthy := runCheckers(ctx, checkers)
		health := HealthStatus{
			Status:    "healthy",
			Timestamp: time.Now(),
			Checks:    deps,
		}
		if engine != nil {
			es := engine()
			health.Engine = &es
		}

		statusCode := http.StatusOK
		if !healthy {
			health.Status = "unhealthy"
			statusCode = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(health)
	}
}

// ReadinessHandler is 503 while any dependency is down; a busy engine is still ready.
func ReadinessHandler(checkers map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "ready", http.StatusOK
		if _, healthy := runCheckers(ctx, checkers); !healthy {
			status, code = "not ready", http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":    status,
			"timestamp": time.Now(),
		})
	}
}

// LivenessHandler creates a liveness check handler (simplest check)
func LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
