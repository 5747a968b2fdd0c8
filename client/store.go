package client

import (
	"context"
	"sync"

	auth "github.com/skilllink/learnex-auth"
)

// StateKind is the session store's position in its lifecycle.
type StateKind int

const (
	// Uninitialized means Init has not resolved yet. UIs show a
	// loading state; the guard never routes off it.
	Uninitialized StateKind = iota
	Anonymous
	Authenticated
)

func (k StateKind) String() string {
	switch k {
	case Anonymous:
		return "anonymous"
	case Authenticated:
		return "authenticated"
	default:
		return "uninitialized"
	}
}

// State is the session snapshot handed to guards and UIs. User is only
// meaningful when Kind is Authenticated.
type State struct {
	Kind StateKind
	User auth.PublicUser
}

// verifyCall is one shared in-flight Init resolution. Every concurrent
// Init waits on the same call rather than issuing its own verify.
type verifyCall struct {
	done  chan struct{}
	state State
}

// SessionStore owns the client-side session state machine. Transitions:
// Uninitialized resolves exactly once into Anonymous or Authenticated;
// after that the store never returns to Uninitialized.
type SessionStore struct {
	api    *Client
	marker MarkerStore

	mu      sync.Mutex
	state   State
	pending *verifyCall
	// gen invalidates an in-flight verify: any transition that bumps it
	// wins over the verify's eventual result.
	gen uint64
}

func NewSessionStore(api *Client, marker MarkerStore) *SessionStore {
	if marker == nil {
		marker = NewMemoryMarker()
	}
	return &SessionStore{
		api:    api,
		marker: marker,
		state:  State{Kind: Uninitialized},
	}
}

// Current returns the present snapshot without touching the network.
func (s *SessionStore) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Init resolves the initial session state. Without a marker it settles
// on Anonymous immediately; with one it verifies the cookie against the
// server. Safe to call from any number of goroutines: they all share a
// single verify request and see the same result.
func (s *SessionStore) Init(ctx context.Context) State {
	s.mu.Lock()

	if s.state.Kind != Uninitialized {
		state := s.state
		s.mu.Unlock()
		return state
	}

	if s.pending != nil {
		call := s.pending
		s.mu.Unlock()
		select {
		case <-call.done:
			return call.state
		case <-ctx.Done():
			return s.Current()
		}
	}

	call := &verifyCall{done: make(chan struct{})}
	s.pending = call
	gen := s.gen
	s.mu.Unlock()

	state := s.resolve(ctx)

	s.mu.Lock()
	if s.gen == gen && s.state.Kind == Uninitialized {
		s.state = state
	}
	// A transition during the verify (login, logout) supersedes its
	// result; waiters get whatever won.
	call.state = s.state
	s.pending = nil
	s.mu.Unlock()

	close(call.done)

	return call.state
}

func (s *SessionStore) resolve(ctx context.Context) State {
	present, err := s.marker.Present()
	if err != nil || !present {
		return State{Kind: Anonymous}
	}

	user, err := s.api.Verify(ctx)
	if err != nil {
		// Stale or rejected session: clear the marker so the next
		// startup skips the round-trip.
		_ = s.marker.Clear()
		return State{Kind: Anonymous}
	}

	return State{Kind: Authenticated, User: user}
}

// LoginSucceeded records a fresh session after a successful login call.
func (s *SessionStore) LoginSucceeded(user auth.PublicUser) {
	s.authenticated(user)
}

// RegisterSucceeded records the session a successful registration opens.
func (s *SessionStore) RegisterSucceeded(user auth.PublicUser) {
	s.authenticated(user)
}

func (s *SessionStore) authenticated(user auth.PublicUser) {
	_ = s.marker.Set()

	s.mu.Lock()
	s.gen++
	s.state = State{Kind: Authenticated, User: user}
	s.mu.Unlock()
}

// Logout drops the session. The server call is best effort: a dead
// server must not trap the user in an authenticated UI.
func (s *SessionStore) Logout(ctx context.Context) {
	s.mu.Lock()
	s.gen++
	s.state = State{Kind: Anonymous}
	s.mu.Unlock()

	_ = s.marker.Clear()
	_ = s.api.Logout(ctx)
}
