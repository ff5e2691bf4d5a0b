package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/daveisadork/flexcore/discovery"
)

// Manager tracks one Handle per radio serial, for a client that may hold
// several radios connected at once. Grounded on the teacher's
// internal/core.SessionManager (a handle-keyed map guarding a single
// *RadioSession each), generalized from a raw TCP/WebRTC leg holder into
// a map of fully-stated Handles keyed by the radio's serial rather than
// its wire handle (a serial is known before the handshake assigns a wire
// handle, and survives a reconnect that gets a different one).
type Manager struct {
	logger *slog.Logger
	newOpt func() Options

	mu    sync.RWMutex
	byKey map[string]*Handle
}

// NewManager constructs a Manager. newOpt is called once per Connect to
// build that Handle's Options (so each gets its own OnState closure, for
// instance); it may be nil, in which case every Handle uses zero-value
// Options.
func NewManager(logger *slog.Logger, newOpt func() Options) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{logger: logger, newOpt: newOpt, byKey: make(map[string]*Handle)}
}

// Connect builds a new Handle for d and connects it, registering it
// under d.Serial. Connecting a serial that already has a live Handle
// replaces it, disconnecting the old one first.
func (m *Manager) Connect(ctx context.Context, d discovery.RadioDescriptor) (*Handle, error) {
	var opt Options
	if m.newOpt != nil {
		opt = m.newOpt()
	}
	if opt.Logger == nil {
		opt.Logger = m.logger
	}
	h := New(opt)

	m.mu.Lock()
	if old, ok := m.byKey[d.Serial]; ok {
		m.mu.Unlock()
		old.Disconnect()
		m.mu.Lock()
	}
	m.byKey[d.Serial] = h
	m.mu.Unlock()

	if err := h.Connect(ctx, d); err != nil {
		m.mu.Lock()
		if m.byKey[d.Serial] == h {
			delete(m.byKey, d.Serial)
		}
		m.mu.Unlock()
		return nil, fmt.Errorf("session: connect %s: %w", d.Serial, err)
	}
	return h, nil
}

// Get returns the Handle registered for serial, if any.
func (m *Manager) Get(serial string) (*Handle, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	h, ok := m.byKey[serial]
	return h, ok
}

// Remove disconnects and forgets the Handle registered for serial, a
// no-op if none is registered.
func (m *Manager) Remove(serial string) {
	m.mu.Lock()
	h, ok := m.byKey[serial]
	delete(m.byKey, serial)
	m.mu.Unlock()
	if ok {
		h.Disconnect()
	}
}

// Serials returns every serial currently tracked, connected or not.
func (m *Manager) Serials() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.byKey))
	for k := range m.byKey {
		out = append(out, k)
	}
	return out
}

// CloseAll disconnects every tracked Handle and empties the map, for
// shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	handles := m.byKey
	m.byKey = make(map[string]*Handle)
	m.mu.Unlock()
	for _, h := range handles {
		h.Disconnect()
	}
}
