package remote

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the target record no longer exists on the
// backend, typically deleted by another session. Callers remove the
// record locally and do not retry.
var ErrNotFound = errors.New("remote: reminder not found")

// AuthError indicates that authentication has failed or expired.
// It is returned when the backend responds with 401.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error: %s", e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsNotFound reports whether err means the remote record is gone.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
