// Package sessions holds the live state of adaptive test sessions. State
// lives in memory for the duration of a session and is persisted through the
// repositories only at completion.
package sessions

import (
	"sync"
	"time"

	"github.com/error-404/learning-service/internal/adaptive"
	"github.com/error-404/learning-service/internal/models"
)

// Session is the live state of one adaptive test run. Callers must hold the
// session mutex while reading or mutating the engine and response slices.
type Session struct {
	sync.Mutex

	ID          string
	UserID      string
	ModuleID    uint
	ModuleTitle string

	Engine *adaptive.Engine

	// Lesson currently under test, 0 before the first StartLesson.
	CurrentLessonID uint

	// Lesson IDs by name for every lesson visited, used when feeding
	// review cards at completion.
	LessonIDs map[string]uint

	// Questions already served in this session, to avoid repeats.
	Asked map[uint]bool

	// Question currently awaiting an answer, nil between questions.
	Pending *models.Question

	Responses    []models.UserResponse
	IRTResponses []adaptive.ItemResponse

	Ability float64
	StdErr  float64

	StartedAt time.Time

	lastTouched time.Time
}

// Touch refreshes the expiry clock. The store calls it on every lookup.
func (s *Session) Touch() {
	s.lastTouched = time.Now()
}

// Store is a TTL-bounded in-memory registry of live sessions, safe for
// concurrent use.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

// NewStore creates a store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		done:     make(chan struct{}),
	}
}

// New registers a fresh session.
func (st *Store) New(id, userID string, moduleID uint, moduleTitle string) *Session {
	s := &Session{
		ID:          id,
		UserID:      userID,
		ModuleID:    moduleID,
		ModuleTitle: moduleTitle,
		Engine:      adaptive.NewEngine(),
		LessonIDs:   make(map[string]uint),
		Asked:       make(map[uint]bool),
		StdErr:      adaptive.DefaultStandardError,
		StartedAt:   time.Now(),
		lastTouched: time.Now(),
	}

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()
	return s
}

// Get returns the session and refreshes its expiry, or nil when unknown or
// already expired.
func (st *Store) Get(id string) *Session {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil
	}

	s.Lock()
	if time.Since(s.lastTouched) > st.ttl {
		s.Unlock()
		st.Delete(id)
		return nil
	}
	s.Touch()
	s.Unlock()
	return s
}

// Delete removes a session from the store.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// StartJanitor launches a goroutine that evicts expired sessions at the given
// interval until Close is called.
func (st *Store) StartJanitor(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				st.evictExpired()
			case <-st.done:
				return
			}
		}
	}()
}

// Close stops the janitor.
func (st *Store) Close() {
	st.stopOnce.Do(func() { close(st.done) })
}

func (st *Store) evictExpired() {
	st.mu.Lock()
	defer st.mu.Unlock()

	now := time.Now()
	for id, s := range st.sessions {
		s.Lock()
		expired := now.Sub(s.lastTouched) > st.ttl
		s.Unlock()
		if expired {
			delete(st.sessions, id)
		}
	}
}
