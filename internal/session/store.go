// ABOUTME: Thread-safe store for MCP HTTP sessions with idle expiry and a size cap.
// ABOUTME: Least recently used sessions are evicted first when the store is full.

package session

import (
	"container/list"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is one MCP client session on the HTTP transport.
type Session struct {
	ID              string
	ProtocolVersion string
	Owner           string // principal subject that created the session, empty when anonymous
	CreatedAt       time.Time
}

// entry stores the last-use time and list element for a session.
type entry struct {
	session  *Session
	lastUsed time.Time
	element  *list.Element
}

// Store holds sessions keyed by ID. Sessions unused for longer than the idle
// TTL expire; when maxSize is reached the least recently used one is evicted.
// Uses a doubly-linked list ordered by last use for O(1) eviction.
type Store struct {
	mu      sync.Mutex
	byID    map[string]*entry
	order   *list.List // session IDs, least recently used at front
	ttl     time.Duration
	maxSize int
	now     func() time.Time
	done    chan struct{}
	closed  bool
}

// New creates a session store. A background goroutine periodically removes
// expired sessions until Close is called.
func New(ttl time.Duration, maxSize int) *Store {
	s := &Store{
		byID:    make(map[string]*entry),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go s.cleanup()
	return s
}

// Create starts a new session with a random ID.
func (s *Store) Create(protocolVersion, owner string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess := &Session{
		ID:              uuid.New().String(),
		ProtocolVersion: protocolVersion,
		Owner:           owner,
		CreatedAt:       now,
	}

	if s.maxSize > 0 && len(s.byID) >= s.maxSize {
		s.evictOldest()
	}

	elem := s.order.PushBack(sess.ID)
	s.byID[sess.ID] = &entry{session: sess, lastUsed: now, element: elem}
	return sess
}

// Get returns a live session and marks it used.
func (s *Store) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	now := s.now()
	if s.expired(e, now) {
		s.removeLocked(id, e)
		return nil, false
	}
	e.lastUsed = now
	s.order.MoveToBack(e.element)
	return e.session, true
}

// Delete ends a session. It reports whether the session existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[id]
	if !ok {
		return false
	}
	s.removeLocked(id, e)
	return true
}

// Len returns the number of stored sessions, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.ttl > 0 && now.Sub(e.lastUsed) > s.ttl
}

func (s *Store) removeLocked(id string, e *entry) {
	s.order.Remove(e.element)
	delete(s.byID, id)
}

// evictOldest removes the least recently used session. Must be called with mu held.
func (s *Store) evictOldest() {
	front := s.order.Front()
	if front == nil {
		return
	}
	id, _ := front.Value.(string)
	s.order.Remove(front)
	delete(s.byID, id)
}

// cleanup runs in a background goroutine, periodically removing expired sessions.
func (s *Store) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

// sweep removes all expired sessions.
func (s *Store) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for id, e := range s.byID {
		if s.expired(e, now) {
			s.removeLocked(id, e)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.closed {
		close(s.done)
		s.closed = true
	}
}
