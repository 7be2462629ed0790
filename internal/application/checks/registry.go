package checks

import (
	"fmt"
	"strings"
	"sync"

	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
)

// Registry is the source of truth for the set of checks and their latest state.
// Only the Runner writes to it; everyone else reads or subscribes.
type Registry struct {
	mu     sync.RWMutex
	order  []domain.CheckID
	defs   map[domain.CheckID]domain.CheckDefinition
	states map[domain.CheckID]domain.CheckState

	subMu   sync.Mutex
	subs    map[int]func(domain.Entry)
	nextSub int
}

// NewRegistry registers defs in order, every check starting idle.
func NewRegistry(defs []domain.CheckDefinition) (*Registry, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("registry needs at least one check")
	}
	r := &Registry{
		order:  make([]domain.CheckID, 0, len(defs)),
		defs:   make(map[domain.CheckID]domain.CheckDefinition, len(defs)),
		states: make(map[domain.CheckID]domain.CheckState, len(defs)),
		subs:   make(map[int]func(domain.Entry)),
	}
	for _, d := range defs {
		if strings.TrimSpace(string(d.ID)) == "" {
			return nil, fmt.Errorf("check id cannot be empty")
		}
		if _, dup := r.defs[d.ID]; dup {
			return nil, fmt.Errorf("duplicate check id: %s", d.ID)
		}
		r.order = append(r.order, d.ID)
		r.defs[d.ID] = d
		r.states[d.ID] = domain.IdleState()
	}
	return r, nil
}

// List returns every check in registration order.
func (r *Registry) List() []domain.Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, domain.Entry{Definition: r.defs[id], State: r.states[id].Clone()})
	}
	return out
}

// Definitions returns the definitions in registration order.
func (r *Registry) Definitions() []domain.CheckDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]domain.CheckDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

func (r *Registry) Definition(id domain.CheckID) (domain.CheckDefinition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.defs[id]
	if !ok {
		return domain.CheckDefinition{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return d, nil
}

func (r *Registry) Get(id domain.CheckID) (domain.CheckState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.states[id]
	if !ok {
		return domain.CheckState{}, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return st.Clone(), nil
}

// SetState replaces the state of id and notifies subscribers.
func (r *Registry) SetState(id domain.CheckID, st domain.CheckState) error {
	if err := st.Validate(); err != nil {
		return err
	}
	st = st.Clone()

	r.mu.Lock()
	def, ok := r.defs[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	r.states[id] = st
	r.mu.Unlock()

	r.publish(domain.Entry{Definition: def, State: st})
	return nil
}

// Subscribe registers fn to be called after every state change.
// The returned func removes the subscription.
func (r *Registry) Subscribe(fn func(domain.Entry)) (cancel func()) {
	r.subMu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.subMu.Unlock()

	return func() {
		r.subMu.Lock()
		delete(r.subs, id)
		r.subMu.Unlock()
	}
}

func (r *Registry) publish(e domain.Entry) {
	r.subMu.Lock()
	fns := make([]func(domain.Entry), 0, len(r.subs))
	for _, fn := range r.subs {
		fns = append(fns, fn)
	}
	r.subMu.Unlock()

	for _, fn := range fns {
		fn(domain.Entry{Definition: e.Definition, State: e.State.Clone()})
	}
}
