package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/perfura/storefront/internal/database"
	"github.com/perfura/storefront/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fakeUsers struct {
	mu     sync.Mutex
	users  map[string]*models.User
	hashes map[string]string
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{}, hashes: map[string]string{}}
}

func (f *fakeUsers) CreateUser(_ context.Context, email, fullName, hash string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	if _, ok := f.users[email]; ok {
		return nil, database.ErrEmailTaken
	}
	u := &models.User{ID: uuid.NewString(), Email: email, FullName: fullName, CreatedAt: time.Now()}
	f.users[email] = u
	f.hashes[email] = hash
	return u, nil
}

func (f *fakeUsers) GetUserCredentials(_ context.Context, email string) (*models.User, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	u, ok := f.users[email]
	if !ok {
		return nil, "", database.ErrUserNotFound
	}
	copied := *u
	return &copied, f.hashes[email], nil
}

func (f *fakeUsers) UpdateUserFullName(_ context.Context, id, fullName string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.ID == id {
			u.FullName = fullName
			copied := *u
			return &copied, nil
		}
	}
	return nil, database.ErrUserNotFound
}

func newTestService() *Service {
	s := NewService(newFakeUsers(), zerolog.Nop())
	s.cost = bcrypt.MinCost
	return s
}

type recorded struct {
	event   Event
	session *Session
}

func TestSignUpSignInSignOut(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	var events []recorded
	unsubscribe := s.Subscribe("sid-1", func(e Event, sess *Session) {
		events = append(events, recorded{e, sess})
	})
	defer unsubscribe()

	session, err := s.SignUp(ctx, "sid-1", "Shopper@Example.com", "secret1", "Shopper")
	require.NoError(t, err)
	assert.Equal(t, "shopper@example.com", session.Email)

	require.NoError(t, s.SignOut(ctx, "sid-1"))
	current, err := s.Session(ctx, "sid-1")
	require.NoError(t, err)
	assert.Nil(t, current)

	_, err = s.SignIn(ctx, "sid-1", "shopper@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.SignIn(ctx, "sid-1", "shopper@example.com", "secret1")
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, EventSignedIn, events[0].event)
	assert.Equal(t, EventSignedOut, events[1].event)
	assert.Nil(t, events[1].session)
	assert.Equal(t, EventSignedIn, events[2].event)
	assert.Equal(t, "shopper@example.com", events[2].session.Email)
}

func TestSignUpErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.SignUp(ctx, "a", " ", "secret1", "")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = s.SignUp(ctx, "a", "a@example.com", "short", "")
	assert.ErrorIs(t, err, ErrWeakPassword)

	_, err = s.SignUp(ctx, "a", "a@example.com", "secret1", "")
	require.NoError(t, err)
	_, err = s.SignUp(ctx, "b", "A@example.com", "secret1", "")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInUnknownUser(t *testing.T) {
	_, err := newTestService().SignIn(context.Background(), "sid", "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestUnsubscribeStopsEvents(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	calls := 0
	unsubscribe := s.Subscribe("sid", func(Event, *Session) { calls++ })
	unsubscribe()
	unsubscribe()

	_, err := s.SignUp(ctx, "sid", "quiet@example.com", "secret1", "")
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Empty(t, s.listeners)
}

func TestSessionsAreScopedToClient(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	other := 0
	defer s.Subscribe("other", func(Event, *Session) { other++ })()

	_, err := s.SignUp(ctx, "mine", "mine@example.com", "secret1", "")
	require.NoError(t, err)

	current, err := s.Session(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, current)
	assert.Zero(t, other)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	s := newTestService()

	_, err := s.UpdateProfile(ctx, "sid", "Name")
	assert.ErrorIs(t, err, ErrNotSignedIn)

	_, err = s.SignUp(ctx, "sid", "named@example.com", "secret1", "Old")
	require.NoError(t, err)

	var last Event
	defer s.Subscribe("sid", func(e Event, _ *Session) { last = e })()

	session, err := s.UpdateProfile(ctx, "sid", "New")
	require.NoError(t, err)
	assert.Equal(t, "New", session.FullName)
	assert.Equal(t, EventUserUpdated, last)
}
