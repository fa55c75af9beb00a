// Package session keeps per-user counseling state in memory.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

type Session struct {
	ID        string     `json:"session_id"`
	Career    string     `json:"career"`
	Values    []string   `json:"values"`
	Issued    [][]string `json:"issued"` // one slice per generation round
	CreatedAt time.Time  `json:"created_at"`
}

// Previous returns every issue handed out so far, oldest first.
func (s *Session) Previous() []string {
	var all []string
	for _, round := range s.Issued {
		all = append(all, round...)
	}
	return all
}

// Store is safe for concurrent use. Getters return copies.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

func (s *Store) Create() *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.clone()
}

// GetOrCreate returns the session for id, creating it under that id when it
// does not exist yet.
func (s *Store) GetOrCreate(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{ID: id, CreatedAt: time.Now().UTC()}
		s.sessions[id] = sess
	}
	return sess.clone()
}

func (s *Store) Get(id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sess.clone(), nil
}

func (s *Store) SetCareer(id, career string) error {
	return s.update(id, func(sess *Session) {
		sess.Career = career
	})
}

func (s *Store) SetValues(id string, values []string) error {
	return s.update(id, func(sess *Session) {
		sess.Values = append([]string(nil), values...)
	})
}

// AppendIssued records one generation round.
func (s *Store) AppendIssued(id string, issues []string) error {
	return s.update(id, func(sess *Session) {
		sess.Issued = append(sess.Issued, append([]string(nil), issues...))
	})
}

// ResetIssued forgets the generation history but keeps career and values.
func (s *Store) ResetIssued(id string) error {
	return s.update(id, func(sess *Session) {
		sess.Issued = nil
	})
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) update(id string, fn func(*Session)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	fn(sess)
	return nil
}

func (s *Session) clone() *Session {
	c := *s
	c.Values = append([]string(nil), s.Values...)
	c.Issued = make([][]string, len(s.Issued))
	for i, round := range s.Issued {
		c.Issued[i] = append([]string(nil), round...)
	}
	return &c
}
