package app

import (
	"context"
	"strings"

	"github.com/perfura/storefront/internal/auth"
	"github.com/perfura/storefront/internal/models"
	"github.com/rs/zerolog"
)

// Bridge keeps a client state in step with the auth provider until closed.
type Bridge struct {
	unsubscribe func()
}

func Connect(ctx context.Context, provider auth.Provider, state *State, logger zerolog.Logger) *Bridge {
	unsubscribe := provider.Subscribe(state.ID(), func(event auth.Event, session *auth.Session) {
		logger.Debug().Str("event", string(event)).Str("client", state.ID()).Msg("auth state changed")
		state.SetUser(UserFromSession(session))
	})

	session, err := provider.Session(ctx, state.ID())
	if err != nil {
		logger.Error().Err(err).Msg("error getting session")
	}
	state.SetUser(UserFromSession(session))

	return &Bridge{unsubscribe: unsubscribe}
}

func (b *Bridge) Close() {
	b.unsubscribe()
}

// UserFromSession maps a provider session to the local user. Sessions without
// an email count as signed out.
func UserFromSession(session *auth.Session) *models.User {
	if session == nil || strings.TrimSpace(session.Email) == "" {
		return nil
	}
	return &models.User{
		ID:        session.UserID,
		Email:     session.Email,
		FullName:  session.FullName,
		CreatedAt: session.CreatedAt,
	}
}

// DisplayName is the name shown next to a review: the local part of the
// email address.
func DisplayName(user *models.User) string {
	if user == nil {
		return "Anonymous"
	}
	if local, _, _ := strings.Cut(user.Email, "@"); local != "" {
		return local
	}
	return "Anonymous"
}
