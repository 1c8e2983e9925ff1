package calculator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go-chi-calculator/internal/calculator/engine"
	"go-chi-calculator/internal/observability"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionLimit    = errors.New("session limit reached")
)

// StoreConfig bounds the session store. Zero values mean no limit and no expiry.
type StoreConfig struct {
	TTL         time.Duration
	MaxSessions int
}

// session is one client's calculator. mu serialises presses so the engine only
// ever sees one dispatcher at a time.
type session struct {
	id string

	mu       sync.Mutex
	engine   *engine.Engine
	display  string
	renders  int
	lastUsed time.Time
}

// View is what a client sees of its session.
type View struct {
	ID       string
	Snapshot engine.Snapshot
	Renders  int
	Rendered string
}

func (s *session) view() View {
	return View{
		ID:       s.id,
		Snapshot: s.engine.Snapshot(),
		Renders:  s.renders,
		Rendered: s.display,
	}
}

// Store keeps calculator sessions in memory.
type Store struct {
	cfg StoreConfig
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*session

	active prometheus.Gauge
}

// NewStore builds a store and registers its gauge on reg. A nil reg skips registration.
func NewStore(cfg StoreConfig, reg prometheus.Registerer) (*Store, error) {
	s := &Store{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]*session),
		active: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "calculator",
			Name:      "sessions_active",
			Help:      "Number of live calculator sessions.",
		}),
	}

	if reg != nil {
		if err := reg.Register(s.active); err != nil {
			return nil, fmt.Errorf("register sessions gauge: %w", err)
		}
	}

	return s, nil
}

// Create starts a new session in the idle state.
func (s *Store) Create() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cfg.MaxSessions > 0 && len(s.sessions) >= s.cfg.MaxSessions {
		return View{}, ErrSessionLimit
	}

	sess := &session{
		id:       uuid.NewString(),
		lastUsed: s.now(),
	}
	sess.engine = engine.New(engine.RenderFunc(func(text string) {
		sess.display = text
		sess.renders++
	}))

	s.sessions[sess.id] = sess
	s.active.Set(float64(len(s.sessions)))

	return sess.view(), nil
}

func (s *Store) lookup(id string) (*session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	return sess, nil
}

// Get returns the current view of a session without touching its idle timer.
func (s *Store) Get(id string) (View, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	return sess.view(), nil
}

// Press feeds keys to a session in order and reports each step.
func (s *Store) Press(id string, keys []engine.Key) (View, []engine.Step, error) {
	sess, err := s.lookup(id)
	if err != nil {
		return View{}, nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	steps := make([]engine.Step, 0, len(keys))
	for _, k := range keys {
		steps = append(steps, sess.engine.Press(k))
	}
	sess.lastUsed = s.now()

	return sess.view(), steps, nil
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%s: %w", id, ErrSessionNotFound)
	}
	delete(s.sessions, id)
	s.active.Set(float64(len(s.sessions)))

	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle for longer than the TTL and returns how many went.
func (s *Store) Sweep(now time.Time) int {
	if s.cfg.TTL <= 0 {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		sess.mu.Lock()
		idle := now.Sub(sess.lastUsed)
		sess.mu.Unlock()

		if idle > s.cfg.TTL {
			delete(s.sessions, id)
			removed++
		}
	}
	s.active.Set(float64(len(s.sessions)))

	return removed
}

// Run sweeps expired sessions every interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			if n := s.Sweep(t); n > 0 {
				observability.Logger.Info("expired calculator sessions",
					zap.Int("removed", n),
					zap.Int("remaining", s.Len()),
				)
			}
		}
	}
}
