package user

import (
	"context"
	"time"
)

// Store describes persistence operations required by the auth subsystem and
// the administration surface. All reads are by id or unique email; the only
// writes are account creation, password changes and reset-token handling.
type Store interface {
	Create(ctx context.Context, u *User) error
	Find(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	SetResetToken(ctx context.Context, id int64, token string, expires time.Time) error
	// ConsumeResetToken atomically resolves and clears an unexpired reset
	// token, returning ErrNotFound when the token is unknown or stale.
	ConsumeResetToken(ctx context.Context, token string) (*User, error)
}
