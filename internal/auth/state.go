package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// StateTTL is how long a pending sign-in stays valid.
const StateTTL = 10 * time.Minute

// Pending is a sign-in started by /auth/github/login and awaiting its callback.
type Pending struct {
	Redirect string
	Verifier string
	expires  time.Time
}

// StateStore keeps pending sign-ins in memory, keyed by OAuth state.
type StateStore struct {
	mu      sync.Mutex
	pending map[string]Pending
	now     func() time.Time
}

// NewStateStore creates an empty store.
func NewStateStore() *StateStore {
	return &StateStore{pending: make(map[string]Pending), now: time.Now}
}

// Begin records a pending sign-in that will return to redirect.
// It returns the OAuth state and PKCE verifier.
func (s *StateStore) Begin(redirect string) (state, verifier string) {
	state = uuid.NewString()
	verifier = oauth2.GenerateVerifier()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gc()
	s.pending[state] = Pending{Redirect: redirect, Verifier: verifier, expires: s.now().Add(StateTTL)}
	return state, verifier
}

// Take consumes a pending sign-in. Unknown and expired states return false.
func (s *StateStore) Take(state string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pending[state]
	if !ok {
		return Pending{}, false
	}
	delete(s.pending, state)
	if s.now().After(p.expires) {
		return Pending{}, false
	}
	return p, true
}

func (s *StateStore) gc() {
	now := s.now()
	for k, p := range s.pending {
		if now.After(p.expires) {
			delete(s.pending, k)
		}
	}
}
