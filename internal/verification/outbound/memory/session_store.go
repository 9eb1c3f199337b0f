package memory

import (
	"time"

	"github.com/shandysiswandi/otpguard/internal/pkg/goerror"
	"github.com/shandysiswandi/otpguard/internal/pkg/shardmap"
	"github.com/shandysiswandi/otpguard/internal/verification/entity"
)

type SessionStore struct {
	items *shardmap.Map[entity.Session]
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: shardmap.New[entity.Session](DefaultShards)}
}

// Create stores a new session. A token collision yields goerror.ErrConflict.
func (s *SessionStore) Create(sess entity.Session) error {
	if !s.items.SetIfAbsent(sess.TokenID, sess) {
		return goerror.ErrConflict
	}
	return nil
}

func (s *SessionStore) Get(tokenID string) (entity.Session, error) {
	sess, ok := s.items.Get(tokenID)
	if !ok {
		return entity.Session{}, goerror.ErrNotFound
	}
	return sess, nil
}

// Update runs fn on a copy of the session under the token's lock. Changes are
// written back unless fn returns remove, in which case the session is
// deleted. The session as fn left it is returned.
func (s *SessionStore) Update(tokenID string, fn func(sess *entity.Session) (remove bool)) (entity.Session, error) {
	var (
		out   entity.Session
		found bool
	)

	s.items.Compute(tokenID, func(cur entity.Session, exists bool) (entity.Session, shardmap.Action) {
		if !exists {
			return cur, shardmap.Keep
		}
		found = true

		if fn(&cur) {
			out = cur
			return cur, shardmap.Remove
		}
		out = cur
		return cur, shardmap.Store
	})

	if !found {
		return entity.Session{}, goerror.ErrNotFound
	}
	return out, nil
}

func (s *SessionStore) Delete(tokenID string) {
	s.items.Delete(tokenID)
}

// Sweep removes sessions that had already expired at cutoff and reports how
// many. Callers pass a cutoff behind the current time so that recently
// expired sessions are still reported as expired by Verify.
func (s *SessionStore) Sweep(cutoff time.Time) int {
	return s.items.DeleteIf(func(_ string, sess entity.Session) bool {
		return sess.IsExpired(cutoff)
	})
}

func (s *SessionStore) Len() int {
	return s.items.Len()
}
