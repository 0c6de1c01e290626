package wizard

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wolfman30/pitaya-nails-booking/internal/session"
)

// ErrInvalidSessionID is returned for ids that are not UUIDs.
var ErrInvalidSessionID = errors.New("wizard: invalid session id")

// Manager keeps one live wizard per session id. Wizards missing from memory
// are rebuilt from their saved state.
type Manager struct {
	mu      sync.Mutex
	base    Options
	store   *session.Store
	wizards map[string]*Wizard
}

// NewManager creates a manager. base.Store is the unscoped store; each
// session gets a scoped view of it.
func NewManager(base Options) *Manager {
	if base.Store == nil {
		base.Store = session.NewStore(nil, base.Logger)
	}
	return &Manager{base: base, store: base.Store, wizards: make(map[string]*Wizard)}
}

// Create opens a fresh session. A non-empty serviceID is pre-selected.
func (m *Manager) Create(ctx context.Context, serviceID string) (string, *Wizard, error) {
	id := uuid.New().String()
	w, err := m.Get(ctx, id)
	if err != nil {
		return "", nil, err
	}
	if serviceID != "" {
		if err := w.SetServices(ctx, []string{serviceID}); err != nil {
			m.Remove(id)
			return "", nil, err
		}
	}
	return id, w, nil
}

// Get returns the live wizard for id, restoring it from the store on a miss.
// The wizard is registered, so Get is the path for requests that change state.
func (m *Manager) Get(ctx context.Context, id string) (*Wizard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSessionID
	}
	if w, ok := m.live(id); ok {
		return w, nil
	}

	w, err := New(ctx, m.sessionOptions(id))
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.wizards[id]; ok {
		w.Close()
		return existing, nil
	}
	m.wizards[id] = w
	m.base.Metrics.SetLiveSessions(len(m.wizards))
	return w, nil
}

// Lookup serves reads. Live wizards and sessions with a saved in-progress
// booking resolve like Get. Any other id gets a detached wizard built from
// whatever the store holds for it, and the manager does not keep it.
func (m *Manager) Lookup(ctx context.Context, id string) (*Wizard, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidSessionID
	}
	if w, ok := m.live(id); ok {
		return w, nil
	}
	if _, saved := m.store.Scoped(id).Load(ctx); saved {
		return m.Get(ctx, id)
	}
	opts := m.sessionOptions(id)
	opts.OnExit = nil
	return New(ctx, opts)
}

func (m *Manager) live(id string) (*Wizard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.wizards[id]
	return w, ok
}

func (m *Manager) sessionOptions(id string) Options {
	opts := m.base
	opts.Store = m.store.Scoped(id)
	if opts.Logger != nil {
		opts.Logger = opts.Logger.With("session_id", id)
	}
	baseExit := m.base.OnExit
	opts.OnExit = func() {
		m.Remove(id)
		if baseExit != nil {
			baseExit()
		}
	}
	return opts
}

// Remove drops the live wizard for id. Its saved state is untouched.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	w, ok := m.wizards[id]
	delete(m.wizards, id)
	n := len(m.wizards)
	m.mu.Unlock()
	if ok {
		w.Close()
	}
	m.base.Metrics.SetLiveSessions(n)
}

// Sweep evicts wizards idle longer than idle and returns how many it removed.
func (m *Manager) Sweep(now time.Time, idle time.Duration) int {
	m.mu.Lock()
	candidates := make(map[string]*Wizard, len(m.wizards))
	for id, w := range m.wizards {
		candidates[id] = w
	}
	m.mu.Unlock()

	removed := 0
	for id, w := range candidates {
		if now.Sub(w.LastActive()) >= idle {
			m.Remove(id)
			removed++
		}
	}
	if removed > 0 && m.base.Logger != nil {
		m.base.Logger.Info("wizard: evicted idle sessions", "count", removed)
	}
	return removed
}

// Len is the number of live wizards.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.wizards)
}
