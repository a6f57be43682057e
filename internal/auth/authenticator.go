package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/Tapedynamics/Twittich/internal/domain"
	"github.com/Tapedynamics/Twittich/internal/repository"
	"github.com/Tapedynamics/Twittich/pkg/jwt"
)

var (
	ErrMissingToken = errors.New("missing token")
	ErrInvalidToken = errors.New("invalid token")
	ErrUnknownUser  = errors.New("unknown user")
)

const bearerPrefix = "Bearer "

// Authenticator validates bearer credentials and resolves them to a
// user. Both the WebSocket gateway and the HTTP middleware go through
// it, so a deleted user is rejected everywhere at once.
type Authenticator struct {
	jwtManager *jwt.Manager
	users      repository.UserRepository
}

// NewAuthenticator creates a new Authenticator.
func NewAuthenticator(jwtManager *jwt.Manager, users repository.UserRepository) *Authenticator {
	return &Authenticator{
		jwtManager: jwtManager,
		users:      users,
	}
}

// Authenticate validates a bearer token and resolves the user it names.
// The "Bearer " prefix is accepted but not required.
func (a *Authenticator) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(strings.TrimPrefix(token, bearerPrefix))
	if token == "" {
		return nil, ErrMissingToken
	}

	userID, err := a.jwtManager.Validate(token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := a.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}

	return user, nil
}
