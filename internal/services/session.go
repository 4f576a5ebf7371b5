package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// Identity is the authenticated caller.
type Identity struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Verified bool      `json:"-"`
}

// SessionGuard resolves bearer headers into identities.
type SessionGuard struct {
	auth *AuthService
}

// NewSessionGuard constructs a SessionGuard.
func NewSessionGuard(auth *AuthService) *SessionGuard {
	return &SessionGuard{auth: auth}
}

// Resolve validates an Authorization header value of the form
// "Bearer <token>". Expired and malformed tokens fail identically.
func (g *SessionGuard) Resolve(ctx context.Context, header string) (Identity, error) {
	token, ok := bearerToken(header)
	if !ok {
		return Identity{}, errMissingToken
	}

	user, err := g.auth.ResolveToken(ctx, token)
	if err != nil {
		return Identity{}, err
	}

	return Identity{ID: user.ID, Email: user.Email, Verified: user.IsVerified}, nil
}

// RequireVerified rejects identities whose account is not verified.
func (g *SessionGuard) RequireVerified(identity Identity) error {
	if !identity.Verified {
		return errNotVerified
	}
	return nil
}

// BearerToken extracts the token from an Authorization header.
func BearerToken(header string) string {
	token, _ := bearerToken(header)
	return token
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
