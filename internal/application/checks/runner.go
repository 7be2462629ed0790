package checks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bryanwahyu/checkdeck/internal/application"
	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

const (
	BatchStartedMessage   = "Starting comprehensive security scan..."
	BatchCompletedMessage = "Comprehensive security scan completed"
	// UnavailableMessage is recorded when the oracle produced no verdict at all.
	UnavailableMessage = "Security check could not be completed"

	DefaultProbeTimeout = 30 * time.Second
)

type Options struct {
	// ProbeTimeout bounds a single oracle call. Zero disables the bound.
	ProbeTimeout time.Duration
}

// Runner drives checks through idle -> running -> success|failed.
// At most one check runs at a time; a conflicting caller gets ErrAlreadyRunning.
type Runner struct {
	registry *Registry
	oracle   domain.Oracle
	notifier domain.Notifier
	clock    application.Clock
	opts     Options

	mu      sync.Mutex
	session *domain.Session

	hookMu sync.RWMutex
	hooks  []func(domain.Settlement)
}

func NewRunner(reg *Registry, oracle domain.Oracle, notifier domain.Notifier, clock application.Clock, opts Options) *Runner {
	if notifier == nil {
		notifier = domain.NotifierFunc(func(domain.NotificationKind, string) {})
	}
	if clock == nil {
		clock = application.SystemClock{}
	}
	return &Runner{
		registry: reg,
		oracle:   oracle,
		notifier: notifier,
		clock:    clock,
		opts:     opts,
	}
}

// OnSettle registers fn to be called synchronously after each check settles,
// after its notification has been emitted.
func (r *Runner) OnSettle(fn func(domain.Settlement)) {
	r.hookMu.Lock()
	r.hooks = append(r.hooks, fn)
	r.hookMu.Unlock()
}

// Active returns the session currently holding the slot, if any.
func (r *Runner) Active() (domain.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil {
		return domain.Session{}, false
	}
	return *r.session, true
}

// RunOne runs a single check end to end.
// Precondition failures (ErrNotFound, ErrAlreadyRunning) leave every state untouched.
func (r *Runner) RunOne(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	def, err := r.registry.Definition(id)
	if err != nil {
		return domain.Verdict{}, err
	}
	if err := r.acquire(domain.Session{CheckID: id, StartedAt: r.clock.Now()}); err != nil {
		return domain.Verdict{}, err
	}
	s, err := r.run(ctx, def, "", r.release)
	return s.Verdict, err
}

// RunAll runs every check in registration order, one after the other.
func (r *Runner) RunAll(ctx context.Context) ([]domain.Verdict, error) {
	report, err := r.RunBatch(ctx)
	if report == nil {
		return nil, err
	}
	out := make([]domain.Verdict, 0, len(report.Entries))
	for _, e := range report.Entries {
		out = append(out, e.Verdict)
	}
	return out, err
}

// RunBatch is RunAll returning the full batch report.
// The batch holds the session from the first check to the last, so no
// other run can slip in between two steps. Oracle failures are recorded
// as failed verdicts and the batch moves on; the returned error joins them.
func (r *Runner) RunBatch(ctx context.Context) (*domain.BatchReport, error) {
	batchID := uuid.NewString()
	started := r.clock.Now()
	if err := r.acquire(domain.Session{BatchID: batchID, StartedAt: started}); err != nil {
		return nil, err
	}
	defer r.release()

	r.notifier.Notify(domain.NotifyInfo, BatchStartedMessage)

	defs := r.registry.Definitions()
	report := &domain.BatchReport{
		BatchID:   batchID,
		StartedAt: started,
		Entries:   make([]domain.BatchEntry, 0, len(defs)),
	}
	var errs []error
	for _, def := range defs {
		r.setCurrent(def.ID)
		s, err := r.run(ctx, def, batchID, func() { r.setCurrent("") })
		entry := domain.BatchEntry{CheckID: def.ID, Name: def.Name, Verdict: s.Verdict}
		if err != nil {
			entry.OracleError = err.Error()
			errs = append(errs, err)
		}
		if s.Verdict.Success {
			report.Passed++
		} else {
			report.Failed++
		}
		report.Entries = append(report.Entries, entry)
	}
	report.FinishedAt = r.clock.Now()

	r.notifier.Notify(domain.NotifySuccess, BatchCompletedMessage)
	return report, errors.Join(errs...)
}

// run assumes the caller already holds the session. done is called once the
// state has settled and before the notification goes out.
func (r *Runner) run(ctx context.Context, def domain.CheckDefinition, batchID string, done func()) (domain.Settlement, error) {
	settle := domain.Settlement{Definition: def, BatchID: batchID}

	prev, err := r.registry.Get(def.ID)
	if err != nil {
		done()
		return settle, err
	}
	if err := domain.ValidateTransition(prev.Status, domain.StatusRunning); err != nil {
		done()
		return settle, err
	}
	settle.StartedAt = r.clock.Now()
	if err := r.registry.SetState(def.ID, domain.RunningState(settle.StartedAt)); err != nil {
		done()
		return settle, err
	}

	verdict, perr := r.probe(ctx, def.ID)
	var runErr error
	if perr != nil {
		runErr = &domain.OracleUnavailableError{CheckID: def.ID, Err: perr}
		verdict = domain.Verdict{
			Success: false,
			Message: UnavailableMessage,
			Details: []string{perr.Error()},
		}
	}

	settle.FinishedAt = r.clock.Now()
	settle.Verdict = verdict
	settle.State = domain.SettledState(verdict, settle.FinishedAt)
	settle.Err = runErr
	// SetState only fails on an unknown id, which Definition already ruled out.
	_ = r.registry.SetState(def.ID, settle.State)
	done()

	if verdict.Success {
		r.notifier.Notify(domain.NotifySuccess, verdict.Message)
	} else {
		r.notifier.Notify(domain.NotifyError, verdict.Message)
	}

	r.hookMu.RLock()
	hooks := append([]func(domain.Settlement){}, r.hooks...)
	r.hookMu.RUnlock()
	for _, fn := range hooks {
		fn(settle)
	}
	return settle, runErr
}

type probeResult struct {
	verdict domain.Verdict
	err     error
}

// probe calls the oracle and returns as soon as it answers or ctx is done.
// A late answer after ctx is done is dropped.
func (r *Runner) probe(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	if r.oracle == nil {
		return domain.Verdict{}, errors.New("no oracle configured")
	}
	if r.opts.ProbeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ProbeTimeout)
		defer cancel()
	}

	ch := make(chan probeResult, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				ch <- probeResult{err: fmt.Errorf("oracle panic: %v", p)}
			}
		}()
		v, err := r.oracle.Probe(ctx, id)
		ch <- probeResult{verdict: v, err: err}
	}()

	select {
	case res := <-ch:
		return res.verdict, res.err
	case <-ctx.Done():
		return domain.Verdict{}, fmt.Errorf("probe abandoned: %w", ctx.Err())
	}
}

func (r *Runner) acquire(s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session != nil {
		return domain.ErrAlreadyRunning
	}
	r.session = &s
	return nil
}

func (r *Runner) release() {
	r.mu.Lock()
	r.session = nil
	r.mu.Unlock()
}

func (r *Runner) setCurrent(id domain.CheckID) {
	r.mu.Lock()
	if r.session != nil {
		r.session.CheckID = id
	}
	r.mu.Unlock()
}
