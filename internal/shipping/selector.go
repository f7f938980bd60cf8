package shipping

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
)

// State is the lifecycle of a Selector.
type State string

const (
	// StateLoading is the initial state, before methods have been fetched.
	StateLoading State = "loading"
	// StateReady means methods are loaded and one is selected.
	StateReady State = "ready"
	// StateEmpty means the fetch succeeded but no methods are available.
	// Distinct from an error: the shopper sees "no methods available".
	StateEmpty State = "empty"
	// StateError is terminal; there is no automatic retry.
	StateError State = "error"
)

// ErrUnknownMethod is returned when selecting a method ID that is not in
// the loaded list.
var ErrUnknownMethod = errors.New("unknown shipping method")

// ErrNotReady is returned when selecting before methods have loaded.
var ErrNotReady = errors.New("shipping methods not loaded")

// Selector tracks which shipping method is chosen for a checkout. On a
// successful load with a non-empty list and no prior selection it
// auto-selects the first method and fires the change callback exactly
// once; every later Select re-fires it so the owning totals derivation
// recomputes.
type Selector struct {
	onChange func(id string, cost int64)

	mu       sync.Mutex
	state    State
	methods  []Method
	selected string
	loadErr  error
}

// NewSelector creates a Selector in the loading state. onChange may be
// nil when the caller polls Selected instead.
func NewSelector(onChange func(id string, cost int64)) *Selector {
	return &Selector{onChange: onChange, state: StateLoading}
}

// Load fetches methods from the repository and transitions the selector
// out of loading. A fetch error moves to StateError; an empty list to
// StateEmpty; otherwise StateReady with the first method auto-selected
// if nothing was selected before.
func (s *Selector) Load(ctx context.Context, repo Repository) error {
	methods, err := repo.List(ctx)

	s.mu.Lock()
	if err != nil {
		s.state = StateError
		s.loadErr = err
		s.mu.Unlock()
		return errors.Wrap(err, "list shipping methods")
	}
	if len(methods) == 0 {
		s.state = StateEmpty
		s.mu.Unlock()
		return nil
	}

	s.methods = methods
	s.state = StateReady

	var notify *Method
	if s.selected == "" {
		s.selected = methods[0].ID
		notify = &methods[0]
	}
	s.mu.Unlock()

	if notify != nil && s.onChange != nil {
		s.onChange(notify.ID, notify.Cost)
	}
	return nil
}

// Select marks the method with the given ID as chosen and fires the
// change callback.
func (s *Selector) Select(id string) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrNotReady
	}

	var chosen *Method
	for i := range s.methods {
		if s.methods[i].ID == id {
			chosen = &s.methods[i]
			break
		}
	}
	if chosen == nil {
		s.mu.Unlock()
		return ErrUnknownMethod
	}
	s.selected = chosen.ID
	s.mu.Unlock()

	if s.onChange != nil {
		s.onChange(chosen.ID, chosen.Cost)
	}
	return nil
}

// State returns the selector's current lifecycle state.
func (s *Selector) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selected returns the chosen method, or ok=false while nothing is
// selected.
func (s *Selector) Selected() (Method, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.methods {
		if m.ID == s.selected {
			return m, true
		}
	}
	return Method{}, false
}
