package auth

import (
	"context"
	"fmt"

	"notas-client/internal/entity"
)

// IAuthGateway is the remote authentication collaborator. Failures surface as
// *AuthError with the remote message verbatim; nothing here retries.
type IAuthGateway interface {
	SignIn(ctx context.Context, email, password string) (*entity.Session, error)
	// SignUp registers the account. No session is produced: the service asks
	// the user to confirm the e-mail address first.
	SignUp(ctx context.Context, email, password string) error
	SignOut(ctx context.Context, accessToken string) error
	RefreshSession(ctx context.Context, refreshToken string) (*entity.Session, error)
}

// AuthError covers invalid credentials, unverified e-mail and network
// failures. The message is shown to the user as-is.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("auth: %s (status %d)", e.Message, e.StatusCode)
	}
	return fmt.Sprintf("auth: %s", e.Message)
}
