package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// Manager keeps the live sessions of this process.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewManager() *Manager {
	return &Manager{sessions: make(map[string]*Session), now: time.Now}
}

func (m *Manager) Create() *Session {
	s := New(uuid.NewString())
	s.lastSeen = m.now()
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()
	return s
}

// Get returns the session and marks it as recently used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	s.touch(m.now())
	return s, nil
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Sweep drops sessions idle for longer than idle and returns how many went.
func (m *Manager) Sweep(idle time.Duration) int {
	cutoff := m.now().Add(-idle)
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

// StartSweeper schedules Sweep on a cron spec such as "@every 1m".
// The caller stops the returned cron on shutdown.
func (m *Manager) StartSweeper(spec string, idle time.Duration, log *slog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if n := m.Sweep(idle); n > 0 {
			log.Info("expired idle sessions", "count", n, "remaining", m.Len())
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
