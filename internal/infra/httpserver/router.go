package httpserver

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	appchecks "github.com/bryanwahyu/checkdeck/internal/application/checks"
	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
	"github.com/bryanwahyu/checkdeck/internal/middleware"
)

// Options configures the outer HTTP surface.
type Options struct {
	APIKeys     map[string]string
	CORSOrigins []string
	// RateLimiter guards the run endpoints; nil disables limiting.
	RateLimiter *middleware.RateLimiter
	// Stream serves GET /v1/stream; nil disables it.
	Stream http.Handler
	Health map[string]middleware.HealthChecker
}

type Router struct {
	svc *appchecks.Service
}

func NewRouter(svc *appchecks.Service, opts Options) http.Handler {
	r := &Router{svc: svc}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.CORSOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins:   opts.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
			ExposedHeaders:   []string{"X-Request-Id", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Health, r.engineStatus))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/readyz", middleware.ReadinessHandler(opts.Health))
	mux.Get("/metrics", middleware.MetricsHandler)

	limit := func(next http.Handler) http.Handler { return next }
	if opts.RateLimiter != nil {
		limit = middleware.RateLimit(opts.RateLimiter)
	}

	mux.Route("/v1", func(rt chi.Router) {
		rt.Use(middleware.APIKeyAuth(opts.APIKeys))

		rt.Get("/checks", r.wrap(r.handleList))
		rt.With(limit).Post("/checks/run", r.wrap(r.handleRunAll))
		rt.Get("/checks/{id}", r.wrap(r.handleGet))
		rt.With(limit).Post("/checks/{id}/run", r.wrap(r.handleRunOne))
		rt.Get("/checks/{id}/history", r.wrap(r.handleHistory))
		rt.Get("/session", r.wrap(r.handleSession))
		rt.Get("/features", r.wrap(r.handleFeatures))
		if opts.Stream != nil {
			rt.Handle("/stream", opts.Stream)
		}
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type errorBody struct {
	Error string `json:"error"`
}

// badRequest marks an error as caused by the caller's input.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		err := h(w, req)
		if err == nil {
			return
		}
		var br badRequest
		switch {
		case errors.As(err, &br):
			writeJSON(w, http.StatusBadRequest, errorBody{Error: br.Error()})
		case errors.Is(err, domain.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
		case errors.Is(err, domain.ErrAlreadyRunning):
			writeJSON(w, http.StatusConflict, errorBody{Error: err.Error()})
		default:
			log.Printf("request failed: method=%s path=%s request_id=%s err=%v",
				req.Method, req.URL.Path, chimw.GetReqID(req.Context()), err)
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response failed: err=%v", err)
	}
}

func checkID(req *http.Request) (domain.CheckID, error) {
	id := chi.URLParam(req, "id")
	if err := middleware.ValidateCheckID(id); err != nil {
		// anything that fails the pattern cannot be registered either
		return "", domain.ErrNotFound
	}
	return domain.CheckID(id), nil
}

// GET /v1/checks
func (r *Router) handleList(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, r.svc.List())
	return nil
}

// GET /v1/checks/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := checkID(req)
	if err != nil {
		return err
	}
	entry, err := r.svc.Get(id)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, entry)
	return nil
}

type runOneResponse struct {
	CheckID domain.CheckID `json:"check_id"`
	Verdict domain.Verdict `json:"verdict"`
	Error   string         `json:"error,omitempty"`
}

// POST /v1/checks/{id}/run
// Blocks until the check settles.
func (r *Router) handleRunOne(w http.ResponseWriter, req *http.Request) error {
	id, err := checkID(req)
	if err != nil {
		return err
	}
	v, err := r.svc.RunOne(req.Context(), id)
	if errors.Is(err, domain.ErrOracleUnavailable) {
		// the check still settled as failed; hand back what was recorded
		writeJSON(w, http.StatusBadGateway, runOneResponse{CheckID: id, Verdict: v, Error: err.Error()})
		return nil
	}
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, runOneResponse{CheckID: id, Verdict: v})
	return nil
}

type runAllResponse struct {
	appchecks.BatchResult
	Errors []string `json:"errors,omitempty"`
}

// POST /v1/checks/run
// Oracle failures inside the batch are reported per entry; the batch itself still completed.
func (r *Router) handleRunAll(w http.ResponseWriter, req *http.Request) error {
	res, err := r.svc.RunAll(req.Context())
	if res.Report == nil {
		if err == nil {
			err = errors.New("batch produced no report")
		}
		return err
	}
	middleware.IncrementBatches()

	out := runAllResponse{BatchResult: res}
	for _, e := range res.Report.Entries {
		if e.OracleError != "" {
			out.Errors = append(out.Errors, e.OracleError)
		}
	}
	writeJSON(w, http.StatusOK, out)
	return nil
}

// GET /v1/checks/{id}/history?limit=20
func (r *Router) handleHistory(w http.ResponseWriter, req *http.Request) error {
	id, err := checkID(req)
	if err != nil {
		return err
	}
	limit := 0
	if raw := req.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			return badRequest{errors.New("limit must be an integer")}
		}
	}
	list, err := r.svc.History(req.Context(), id, middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, list)
	return nil
}

type sessionResponse struct {
	Active  bool            `json:"active"`
	Session *domain.Session `json:"session,omitempty"`
}

// GET /v1/session
func (r *Router) handleSession(w http.ResponseWriter, req *http.Request) error {
	s, ok := r.svc.Session()
	resp := sessionResponse{Active: ok}
	if ok {
		resp.Session = &s
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (r *Router) engineStatus() middleware.EngineStatus {
	entries := r.svc.List()
	es := middleware.EngineStatus{Checks: len(entries), ByStatus: map[string]int{}}
	for _, e := range entries {
		es.ByStatus[string(e.State.Status)]++
	}
	if s, ok := r.svc.Session(); ok {
		es.Busy = true
		es.Current = string(s.CheckID)
	}
	return es
}

// GET /v1/features
func (r *Router) handleFeatures(w http.ResponseWriter, req *http.Request) error {
	writeJSON(w, http.StatusOK, r.svc.ListFeatures())
	return nil
}
