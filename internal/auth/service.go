package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/perfura/storefront/internal/database"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

// Service keeps sessions in memory and verifies passwords with bcrypt.
type Service struct {
	users  UserStore
	cost   int
	logger zerolog.Logger

	mu        sync.Mutex
	sessions  map[string]*Session
	listeners map[string]map[int]Listener
	nextID    int
}

func NewService(users UserStore, logger zerolog.Logger) *Service {
	return &Service{
		users:     users,
		cost:      bcrypt.DefaultCost,
		logger:    logger.With().Str("component", "auth").Logger(),
		sessions:  make(map[string]*Session),
		listeners: make(map[string]map[int]Listener),
	}
}

func (s *Service) SignUp(ctx context.Context, sid, email, password, fullName string) (*Session, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, fullName, string(hash))
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("sign up: %w", err)
	}

	session := sessionFor(user)
	s.set(sid, session, EventSignedIn)
	s.logger.Info().Str("user_id", user.ID).Msg("user signed up")
	return session, nil
}

func (s *Service) SignIn(ctx context.Context, sid, email, password string) (*Session, error) {
	user, hash, err := s.users.GetUserCredentials(ctx, email)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := sessionFor(user)
	s.set(sid, session, EventSignedIn)
	s.logger.Info().Str("user_id", user.ID).Msg("user signed in")
	return session, nil
}

// SignOut drops the session of sid. Signing out twice is not an error.
func (s *Service) SignOut(_ context.Context, sid string) error {
	s.mu.Lock()
	_, ok := s.sessions[sid]
	delete(s.sessions, sid)
	listeners := s.listenersLocked(sid)
	s.mu.Unlock()

	if ok {
		notify(listeners, EventSignedOut, nil)
	}
	return nil
}

// Session returns the current session, or nil when the client is signed out.
func (s *Service) Session(_ context.Context, sid string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sid]
	if !ok {
		return nil, nil
	}
	copied := *session
	return &copied, nil
}

// UpdateProfile renames the signed-in user.
func (s *Service) UpdateProfile(ctx context.Context, sid, fullName string) (*Session, error) {
	current, _ := s.Session(ctx, sid)
	if current == nil {
		return nil, ErrNotSignedIn
	}

	user, err := s.users.UpdateUserFullName(ctx, current.UserID, fullName)
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	session := sessionFor(user)
	s.set(sid, session, EventUserUpdated)
	return session, nil
}

func (s *Service) Subscribe(sid string, fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	if s.listeners[sid] == nil {
		s.listeners[sid] = make(map[int]Listener)
	}
	s.listeners[sid][id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners[sid], id)
			if len(s.listeners[sid]) == 0 {
				delete(s.listeners, sid)
			}
		})
	}
}

func (s *Service) set(sid string, session *Session, event Event) {
	s.mu.Lock()
	s.sessions[sid] = session
	listeners := s.listenersLocked(sid)
	s.mu.Unlock()

	copied := *session
	notify(listeners, event, &copied)
}

func (s *Service) listenersLocked(sid string) []Listener {
	out := make([]Listener, 0, len(s.listeners[sid]))
	for _, fn := range s.listeners[sid] {
		out = append(out, fn)
	}
	return out
}

// Listeners run outside the service lock so they may call back into it.
func notify(listeners []Listener, event Event, session *Session) {
	for _, fn := range listeners {
		fn(event, session)
	}
}
