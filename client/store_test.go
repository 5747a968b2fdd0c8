package client_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/skilllink/learnex-auth/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func registeredStore(t *testing.T) (*client.SessionStore, *client.Client, *fakeServer) {
	t.Helper()

	c, fake := newTestClient(t)
	store := client.NewSessionStore(c, client.NewMemoryMarker())

	_, err := c.Register(context.Background(), client.RegisterPayload{
		Fullname: "Maya Mentor",
		Username: "maya_m",
		Email:    "maya@example.com",
		Password: "super-secret-1",
	})
	require.NoError(t, err)

	return store, c, fake
}

func TestInitWithoutMarkerSkipsNetwork(t *testing.T) {
	c, fake := newTestClient(t)
	store := client.NewSessionStore(c, client.NewMemoryMarker())

	state := store.Init(context.Background())

	assert.Equal(t, client.Anonymous, state.Kind)
	assert.Equal(t, 0, fake.countVerifyCalls(), "no marker means no verify call")
}

func TestInitAfterLoginSucceeded(t *testing.T) {
	store, c, fake := registeredStore(t)

	user, err := c.Login(context.Background(), "maya@example.com", "super-secret-1")
	require.NoError(t, err)

	store.LoginSucceeded(user)

	state := store.Init(context.Background())
	assert.Equal(t, client.Authenticated, state.Kind)
	assert.Equal(t, user.ID, state.User.ID)
	assert.Equal(t, 0, fake.countVerifyCalls(), "state already resolved, no verify")
}

func TestInitVerifiesStoredSession(t *testing.T) {
	c, fake := newTestClient(t)

	user, err := c.Register(context.Background(), client.RegisterPayload{
		Fullname: "Maya Mentor",
		Username: "maya_m",
		Email:    "maya@example.com",
		Password: "super-secret-1",
	})
	require.NoError(t, err)

	// fresh store, same client: simulates a process restart where the
	// marker survived and the cookie is still valid
	marker := client.NewMemoryMarker()
	require.NoError(t, marker.Set())
	store := client.NewSessionStore(c, marker)

	state := store.Init(context.Background())

	assert.Equal(t, client.Authenticated, state.Kind)
	assert.Equal(t, user.ID, state.User.ID)
	assert.Equal(t, 1, fake.countVerifyCalls())
}

func TestInitClearsStaleMarker(t *testing.T) {
	c, fake := newTestClient(t)

	marker := client.NewMemoryMarker()
	require.NoError(t, marker.Set())
	store := client.NewSessionStore(c, marker)

	state := store.Init(context.Background())

	assert.Equal(t, client.Anonymous, state.Kind)
	assert.Equal(t, 1, fake.countVerifyCalls())

	present, err := marker.Present()
	require.NoError(t, err)
	assert.False(t, present, "rejected verify should clear the marker")
}

func TestConcurrentInitSharesOneVerify(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.Register(context.Background(), client.RegisterPayload{
		Fullname: "Maya Mentor",
		Username: "maya_m",
		Email:    "maya@example.com",
		Password: "super-secret-1",
	})
	require.NoError(t, err)

	marker := client.NewMemoryMarker()
	require.NoError(t, marker.Set())

	// hold the verify open until every Init is in flight
	gate := make(chan struct{})
	fake.mu.Lock()
	fake.verifyGate = gate
	fake.mu.Unlock()

	store := client.NewSessionStore(c, marker)

	const callers = 8
	var wg sync.WaitGroup
	states := make([]client.State, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			states[i] = store.Init(context.Background())
		}(i)
	}

	close(gate)
	wg.Wait()

	for _, state := range states {
		assert.Equal(t, client.Authenticated, state.Kind)
	}
	assert.Equal(t, 1, fake.countVerifyCalls(), "concurrent Init must share one verify")
}

func TestLogoutSupersedesInFlightVerify(t *testing.T) {
	c, fake := newTestClient(t)

	_, err := c.Register(context.Background(), client.RegisterPayload{
		Fullname: "Maya Mentor",
		Username: "maya_m",
		Email:    "maya@example.com",
		Password: "super-secret-1",
	})
	require.NoError(t, err)

	marker := client.NewMemoryMarker()
	require.NoError(t, marker.Set())

	gate := make(chan struct{})
	fake.mu.Lock()
	fake.verifyGate = gate
	fake.mu.Unlock()

	store := client.NewSessionStore(c, marker)

	done := make(chan client.State, 1)
	go func() {
		done <- store.Init(context.Background())
	}()

	// wait until the verify request is actually in flight
	require.Eventually(t, func() bool {
		return fake.countVerifyCalls() == 1
	}, 2*time.Second, time.Millisecond)

	store.Logout(context.Background())
	close(gate)

	state := <-done
	assert.Equal(t, client.Anonymous, state.Kind, "logout wins over the in-flight verify")
	assert.Equal(t, client.Anonymous, store.Current().Kind)
}

func TestLogoutClearsMarkerAndState(t *testing.T) {
	store, c, _ := registeredStore(t)

	user, err := c.Login(context.Background(), "maya@example.com", "super-secret-1")
	require.NoError(t, err)
	store.LoginSucceeded(user)

	store.Logout(context.Background())

	assert.Equal(t, client.Anonymous, store.Current().Kind)

	// a later Init stays Anonymous without hitting the network
	state := store.Init(context.Background())
	assert.Equal(t, client.Anonymous, state.Kind)
}

func TestFileMarker(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "marker.json")
	marker := client.NewFileMarker(path)

	present, err := marker.Present()
	require.NoError(t, err)
	assert.False(t, present)

	require.NoError(t, marker.Set())

	present, err = marker.Present()
	require.NoError(t, err)
	assert.True(t, present)

	// a second store sees the same file
	other := client.NewFileMarker(path)
	present, err = other.Present()
	require.NoError(t, err)
	assert.True(t, present)

	require.NoError(t, marker.Clear())

	present, err = marker.Present()
	require.NoError(t, err)
	assert.False(t, present)

	// clearing twice is fine
	require.NoError(t, marker.Clear())
}
