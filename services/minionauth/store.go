package minionauth

import (
	"context"
	"time"

	"github.com/minionworks/authrelay/lib/mylog"
	"github.com/minionworks/authrelay/lib/mystore"
	"github.com/minionworks/authrelay/lib/mytime"
	"github.com/minionworks/authrelay/services/minionauth/exchanger"
)

const (
	DefaultRetention     = 5 * time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// SessionStore owns the table of in-flight auth sessions and the background
// sweeper that evicts sessions older than the retention window. Reads never
// check age: staleness is bounded by the sweep period, which keeps the read
// path to a single map lookup.
type SessionStore struct {
	store     mystore.Store[AuthSession]
	nower     mytime.Nower
	retention time.Duration
	interval  time.Duration
	logger    mylog.Logger
}

func NewSessionStore(c context.Context, nower mytime.Nower, retention time.Duration, sweepInterval time.Duration) (*SessionStore, func(), error) {
	store, cleanup, err := mystore.New[AuthSession](c)
	if err != nil {
		return nil, nil, err
	}

	return newSessionStore(store, nower, retention, sweepInterval), cleanup, nil
}

func newSessionStore(store mystore.Store[AuthSession], nower mytime.Nower, retention time.Duration, sweepInterval time.Duration) *SessionStore {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	return &SessionStore{
		store:     store,
		nower:     nower,
		retention: retention,
		interval:  sweepInterval,
		logger:    mylog.New("sessionstore"),
	}
}

func (s *SessionStore) Retention() time.Duration {
	return s.retention
}

// Create inserts a new pending session. The caller guarantees uniqueness of
// the uid; an existing entry with the same uid is overwritten.
func (s *SessionStore) Create(c context.Context, uid string, minionID string, chatID string, platform ChatPlatform) error {
	return s.store.Put(c, uid, AuthSession{
		UID:          uid,
		Status:       StatusPending,
		MinionID:     minionID,
		ChatID:       chatID,
		ChatPlatform: platform,
		CreatedAt:    s.nower.Now(),
	})
}

func (s *SessionStore) Get(c context.Context, uid string) (AuthSession, bool, error) {
	return s.store.Get(c, uid)
}

// Complete transitions a pending session to completed, attaching the token
// bundle and profile. Reports whether a session exists for the uid and
// whether the transition was actually applied: a session already in a
// terminal state is left untouched and applied stays false.
func (s *SessionStore) Complete(c context.Context, uid string, tokens exchanger.TokenSet, userInfo exchanger.UserInfo) (found bool, applied bool, err error) {
	err = s.store.RunInTransaction(c, func(c context.Context) error {
		session, exists, err := s.store.Get(c, uid)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		found = true

		if session.Status != StatusPending {
			return nil
		}
		applied = true

		session.Status = StatusCompleted
		session.Tokens = &tokens
		session.UserInfo = &userInfo

		return s.store.Put(c, uid, session)
	})

	return found, applied, err
}

// Fail transitions a pending session to failed. Same contract as Complete.
func (s *SessionStore) Fail(c context.Context, uid string, reason string) (found bool, applied bool, err error) {
	err = s.store.RunInTransaction(c, func(c context.Context) error {
		session, exists, err := s.store.Get(c, uid)
		if err != nil {
			return err
		}
		if !exists {
			return nil
		}
		found = true

		if session.Status != StatusPending {
			return nil
		}
		applied = true

		session.Status = StatusFailed
		session.Error = reason

		return s.store.Put(c, uid, session)
	})

	return found, applied, err
}

// Sweep removes every session older than the retention window, regardless of
// status: even pending sessions expire, which bounds growth from abandoned
// flows. Candidates are snapshotted first so the scan does not hold the
// store lock across the deletes.
func (s *SessionStore) Sweep(c context.Context) (int, error) {
	cutoff := s.nower.Now().Add(-s.retention)

	sessions, err := s.store.List(c)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, session := range sessions {
		if session.CreatedAt.After(cutoff) {
			continue
		}

		err := s.store.Delete(c, session.UID)
		if err != nil {
			return removed, err
		}
		removed++
	}

	return removed, nil
}

// StartSweeper runs Sweep on a fixed period until the context is cancelled.
func (s *SessionStore) StartSweeper(c context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-c.Done():
				return
			case <-ticker.C:
				removed, err := s.Sweep(c)
				if err != nil {
					s.logger.Log(c, "", mylog.SeverityError, "Error sweeping expired auth sessions: %s", err)
					continue
				}
				if removed > 0 {
					s.logger.Log(c, "", mylog.SeverityInfo, "Swept %d expired auth sessions", removed)
				}
			}
		}
	}()
}
