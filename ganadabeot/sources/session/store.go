// Package session keeps per-browser state in memory: whether the visitor
// passed the password gate and the last results shown to them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrBusy     = errors.New("a request is already in progress for this session")
)

type Session struct {
	ID        string
	CreatedAt time.Time

	mu            sync.Mutex
	lastSeen      time.Time
	authenticated bool
	busy          bool
	epoch         uint64
	results       map[string]string
	drafts        map[string]string
	flash         string
}

func newSession(now time.Time) *Session {
	return &Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		lastSeen:  now,
		results:   make(map[string]string),
		drafts:    make(map[string]string),
	}
}

func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// SetAuthenticated flips the gate. Logging out drops stored results and
// starts a new epoch. An outstanding round trip keeps the session busy
// until its End.
func (s *Session) SetAuthenticated(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authenticated = v
	if !v {
		s.results = make(map[string]string)
		s.drafts = make(map[string]string)
		s.epoch++
	}
}

// Epoch changes on every logout.
func (s *Session) Epoch() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.epoch
}

// TryBegin marks a round trip as outstanding. Only one may run per session.
func (s *Session) TryBegin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return ErrBusy
	}
	s.busy = true
	return nil
}

// Busy reports whether a round trip is outstanding.
func (s *Session) Busy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

func (s *Session) End() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

// SetResult stores the last text displayed for a mode.
func (s *Session) SetResult(mode, text string) {
	s.mu.Lock()
	s.results[mode] = text
	s.mu.Unlock()
}

// SetResultIn stores text only if the session is still authenticated in
// epoch. A reply that arrives after a logout is dropped.
func (s *Session) SetResultIn(epoch uint64, mode, text string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authenticated || s.epoch != epoch {
		return false
	}
	s.results[mode] = text
	return true
}

func (s *Session) Result(mode string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.results[mode]
	return v, ok
}

// SetDraft keeps the last submitted input so the form can be refilled.
func (s *Session) SetDraft(mode, text string) {
	s.mu.Lock()
	s.drafts[mode] = text
	s.mu.Unlock()
}

func (s *Session) Draft(mode string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.drafts[mode]
}

// SetFlash stores a one-shot message for the next render.
func (s *Session) SetFlash(msg string) {
	s.mu.Lock()
	s.flash = msg
	s.mu.Unlock()
}

// TakeFlash returns and clears the flash message.
func (s *Session) TakeFlash() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg := s.flash
	s.flash = ""
	return msg
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Store holds sessions until they sit idle longer than ttl.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create registers a new unauthenticated session.
func (st *Store) Create() *Session {
	s := newSession(st.now())
	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()
	return s
}

// Get returns a live session and refreshes its idle timer.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	now := st.now()
	if st.ttl > 0 && s.idleSince(now) > st.ttl {
		st.Delete(id)
		return nil, ErrNotFound
	}
	s.touch(now)
	return s, nil
}

func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep drops idle sessions and reports how many were removed.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done. onSweep may be nil.
func (st *Store) Run(ctx context.Context, every time.Duration, onSweep func(removed, remaining int)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := st.Sweep()
			if onSweep != nil {
				onSweep(removed, st.Len())
			}
		}
	}
}
