package auth_test

import (
	"context"
	"strings"
	"sync"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	auth "github.com/skilllink/learnex-auth"
	"github.com/stretchr/testify/mock"
)

// memoryUserStore is an in-memory auth.UserStore for authenticator and
// controller tests.
type memoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*auth.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{
		users: map[uuid.UUID]*auth.User{},
	}
}

func (s *memoryUserStore) GetByID(_ context.Context, id string, _ ...repository.SelectCriteria) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, auth.ErrIdentityNotFound
	}

	if user, ok := s.users[uid]; ok {
		cp := *user
		return &cp, nil
	}

	return nil, auth.ErrIdentityNotFound
}

func (s *memoryUserStore) GetByEmailOrUsername(_ context.Context, identifier string) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if user.Email == identifier || user.Username == identifier {
			cp := *user
			return &cp, nil
		}
	}

	return nil, auth.ErrIdentityNotFound
}

func (s *memoryUserStore) ExistsByEmailOrUsername(_ context.Context, email, username string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) || user.Username == username {
			return true, nil
		}
	}

	return false, nil
}

func (s *memoryUserStore) Register(_ context.Context, user *auth.User) (*auth.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) || existing.Username == user.Username {
			return nil, auth.ErrUserExists
		}
	}

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}

	cp := *user
	s.users[user.ID] = &cp

	return user, nil
}

func (s *memoryUserStore) TrackAttemptedLogin(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.users[user.ID]; ok {
		stored.LoginAttempts++
		now := time.Now()
		stored.LoginAttemptAt = &now
	}

	return nil
}

func (s *memoryUserStore) TrackSuccessfulLogin(_ context.Context, user *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if stored, ok := s.users[user.ID]; ok {
		now := time.Now()
		stored.LoggedInAt = &now
		stored.LoginAttempts = 0
		stored.LoginAttemptAt = nil
	}

	return nil
}

// MockUserStore is a testify mock for error-path tests.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) GetByEmailOrUsername(ctx context.Context, identifier string) (*auth.User, error) {
	args := m.Called(ctx, identifier)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserStore) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	if u := args.Get(0); u != nil {
		return u.(*auth.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserStore) TrackAttemptedLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) TrackSuccessfulLogin(ctx context.Context, user *auth.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// recordingSink collects activity events.
type recordingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (r *recordingSink) Record(_ context.Context, event auth.ActivityEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingSink) types() []auth.ActivityEventType {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]auth.ActivityEventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.EventType)
	}
	return out
}
