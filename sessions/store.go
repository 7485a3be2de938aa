package sessions

import (
	"sync"

	"github.com/samber/mo"
)

// Reader gives calendar code access to the current credentials.
type Reader interface {
	IsAuthorized() bool
	Current() mo.Option[Credentials]
}

// Writer is used by the authorization flow to publish a new credential set.
type Writer interface {
	Set(creds Credentials)
}

// Store holds the single process-wide credential set. There is exactly one
// authenticated identity at a time.
//
// Set overwrites whatever is stored (last-write-wins). Concurrent logins are not
// ordered: the exchange that finishes last is the one that stays, regardless of
// which request started first. The mutex only keeps individual reads and writes
// consistent.
type Store struct {
	mu    sync.RWMutex
	creds *Credentials
}

var (
	_ Reader = (*Store)(nil)
	_ Writer = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Set(creds Credentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds = &creds
}

// IsAuthorized is true once any credential set has been stored.
func (s *Store) IsAuthorized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.creds != nil
}

// Current returns the stored credentials as they are at the moment of the call.
func (s *Store) Current() mo.Option[Credentials] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return mo.None[Credentials]()
	}
	return mo.Some(*s.creds)
}
