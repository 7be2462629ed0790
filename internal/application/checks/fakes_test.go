package checks

import (
	"context"
	"sync"
	"testing"
	"time"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Millisecond)
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []domain.Notification
}

func (n *recordingNotifier) Notify(kind domain.NotificationKind, message string) {
	n.mu.Lock()
	n.msgs = append(n.msgs, domain.Notification{Kind: kind, Message: message})
	n.mu.Unlock()
}

func (n *recordingNotifier) all() []domain.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.Notification{}, n.msgs...)
}

// scriptedOracle answers from a fixed table; ids missing from the table fail.
type scriptedOracle struct {
	mu      sync.Mutex
	results map[domain.CheckID]domain.Verdict
	errs    map[domain.CheckID]error
	calls   []domain.CheckID
	before  func(id domain.CheckID)
}

func (o *scriptedOracle) Probe(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	o.mu.Lock()
	o.calls = append(o.calls, id)
	before := o.before
	o.mu.Unlock()
	if before != nil {
		before(id)
	}
	if err, ok := o.errs[id]; ok {
		return domain.Verdict{}, err
	}
	return o.results[id], nil
}

func (o *scriptedOracle) called() []domain.CheckID {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.CheckID{}, o.calls...)
}

// gatedOracle blocks every probe until release is closed.
type gatedOracle struct {
	entered chan domain.CheckID
	release chan struct{}
	verdict domain.Verdict
}

func newGatedOracle() *gatedOracle {
	return &gatedOracle{
		entered: make(chan domain.CheckID, 16),
		release: make(chan struct{}),
		verdict: domain.Verdict{Success: true, Message: "ok", Details: []string{}},
	}
}

func (o *gatedOracle) Probe(ctx context.Context, id domain.CheckID) (domain.Verdict, error) {
	o.entered <- id
	select {
	case <-o.release:
		return o.verdict, nil
	case <-ctx.Done():
		return domain.Verdict{}, ctx.Err()
	}
}

func abcDefs() []domain.CheckDefinition {
	return []domain.CheckDefinition{
		{ID: "A", Name: "Check A"},
		{ID: "B", Name: "Check B"},
		{ID: "C", Name: "Check C"},
	}
}

func abcOracle() *scriptedOracle {
	return &scriptedOracle{
		results: map[domain.CheckID]domain.Verdict{
			"A": {Success: true, Message: "A passed", Details: []string{"a1"}},
			"B": {Success: false, Message: "B failed", Details: []string{"b1", "b2"}},
			"C": {Success: true, Message: "C passed", Details: []string{"c1"}},
		},
	}
}

func newTestRunner(t *testing.T, oracle domain.Oracle, opts Options) (*Registry, *Runner, *recordingNotifier) {
	reg, err := NewRegistry(abcDefs())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	n := &recordingNotifier{}
	return reg, NewRunner(reg, oracle, n, newFakeClock(), opts), n
}
