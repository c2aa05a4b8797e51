package session

import (
	"context"
	"sync"
	"time"

	"github.com/meetsik24/Split-Bill-Platform-Backend/model"
)

const placeholderCreatorName = "BillSplit User"

// Store holds in-progress USSD dialogue state keyed by the gateway session
// id. Implementations are last-writer-wins; callers that need per-session
// sequencing wrap access in a KeyLock.
type Store interface {
	// GetOrCreate returns the stored session, or a fresh one at the
	// amount step when the id is unseen or expired.
	GetOrCreate(sessionId string, phoneNumber string) (*model.Session, error)
	// Get returns the raw stored session, nil when absent. Diagnostics only.
	Get(sessionId string) (*model.Session, error)
	Put(sessionId string, sess *model.Session) error
	// Remove deletes the session. Removing an absent id is not an error.
	Remove(sessionId string) error
	Count() (int, error)
	// Clear drops every session. Test and diagnostic use only.
	Clear() error
}

func newSession(sessionId string, phoneNumber string) *model.Session {
	now := time.Now()
	return &model.Session{
		Id:           sessionId,
		Step:         model.StepAmount,
		PhoneNumber:  phoneNumber,
		CreatorName:  placeholderCreatorName,
		MemberPhones: []string{},
		CreatedAt:    now,
		LastTouched:  now,
	}
}

// MemoryStore is the process-local default. Idle sessions past the TTL are
// treated as absent on access and reaped by the optional sweeper.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	ttl      time.Duration
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]model.Session),
		ttl:      ttl,
	}
}

func (s *MemoryStore) expired(sess model.Session) bool {
	return s.ttl > 0 && time.Since(sess.LastTouched) > s.ttl
}

func (s *MemoryStore) GetOrCreate(sessionId string, phoneNumber string) (*model.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[sessionId]; ok {
		if !s.expired(sess) {
			sess.LastTouched = time.Now()
			s.sessions[sessionId] = sess
			copied := sess
			return &copied, nil
		}
		delete(s.sessions, sessionId)
	}
	return newSession(sessionId, phoneNumber), nil
}

func (s *MemoryStore) Get(sessionId string) (*model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[sessionId]
	if !ok || s.expired(sess) {
		return nil, nil
	}
	copied := sess
	return &copied, nil
}

func (s *MemoryStore) Put(sessionId string, sess *model.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *sess
	stored.Id = sessionId
	stored.LastTouched = time.Now()
	s.sessions[sessionId] = stored
	return nil
}

func (s *MemoryStore) Remove(sessionId string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionId)
	return nil
}

func (s *MemoryStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sess := range s.sessions {
		if !s.expired(sess) {
			count++
		}
	}
	return count, nil
}

func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]model.Session)
	return nil
}

// StartSweeper reaps expired sessions in the background until ctx is done.
func (s *MemoryStore) StartSweeper(ctx context.Context, interval time.Duration) {
	if s.ttl <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *MemoryStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, id)
		}
	}
}
