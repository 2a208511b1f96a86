// Package session implements issuing and refreshing of the portal's
// access/refresh token pair on top of the token codec and the user store.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/ids"
	"molsnab.ru/internal/mail"
	"molsnab.ru/internal/user"
)

const resetTokenTTL = time.Hour

// Service mints, verifies and rotates session credentials. Tokens are
// self-verifying; no server-side revocation list exists, so concurrent
// logins and refreshes from one account never need coordination.
type Service struct {
	users  user.Store
	codec  *auth.Codec
	mailer mail.Mailer
	now    func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithMailer sets the outbound-mail collaborator for password resets.
func WithMailer(m mail.Mailer) Option {
	return func(s *Service) {
		if m != nil {
			s.mailer = m
		}
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs a Service.
func NewService(users user.Store, codec *auth.Codec, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("session: user store is required")
	}
	if codec == nil {
		return nil, errors.New("session: token codec is required")
	}
	s := &Service{users: users, codec: codec, mailer: mail.Nop{}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Session is a freshly minted credential set plus the sanitized user.
// RefreshToken is empty when only the access token was re-issued.
type Session struct {
	User             user.Public
	AccessToken      string
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresAt time.Time
}

// ExpiresIn returns the remaining access-token lifetime in whole seconds.
func (s Session) ExpiresIn(now time.Time) int64 {
	return int64(s.AccessExpiresAt.Sub(now) / time.Second)
}

// Login authenticates email+password and mints a full token pair.
//
// Error mapping is deliberate and mirrors the documented (and known-weak)
// behavior: unknown email surfaces user.ErrNotFound, a wrong password
// surfaces auth.ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, user.ErrInvalidInput
	}
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if !u.Active || u.Access == 0 {
		return Session{}, auth.ErrAccountDisabled
	}
	if err := auth.VerifyPassword(u.PasswordHash, password); err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

// Registration carries the self-service signup fields.
type Registration struct {
	Email        string
	Password     string
	ContractCode string
	Name         string
	INN          string
	Address      string
	Phone        string
}

func (r *Registration) validate() error {
	r.Email = user.NormalizeEmail(r.Email)
	r.ContractCode = strings.TrimSpace(r.ContractCode)
	r.Name = strings.TrimSpace(r.Name)
	r.INN = strings.TrimSpace(r.INN)
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return user.ErrInvalidInput
	}
	if len(r.Password) < 6 {
		return user.ErrInvalidInput
	}
	if r.ContractCode == "" || r.Name == "" || r.INN == "" {
		return user.ErrInvalidInput
	}
	return nil
}

// Register creates a new client account and mints its first token pair.
func (s *Service) Register(ctx context.Context, reg Registration) (Session, error) {
	if err := reg.validate(); err != nil {
		return Session{}, err
	}
	hash, err := auth.HashPassword(reg.Password)
	if err != nil {
		return Session{}, err
	}
	u := &user.User{
		Email:        reg.Email,
		PasswordHash: hash,
		Role:         auth.RoleClient,
		Access:       1,
		Active:       true,
		Name:         reg.Name,
		INN:          reg.INN,
		ContractCode: reg.ContractCode,
		Address:      reg.Address,
		Phone:        reg.Phone,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return Session{}, err
	}
	return s.issue(u)
}

// Refresh exchanges a valid refresh token for a new access token. Claims are
// always re-derived from the store by id, never copied from the refresh
// payload, so a mid-session role change takes effect on the next refresh and
// disabled accounts are refused here, not only at login.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	claims, err := s.codec.DecodeRefresh(refreshToken)
	if err != nil {
		return Session{}, err
	}
	u, err := s.users.Find(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Session{}, auth.ErrInvalidToken
		}
		return Session{}, err
	}
	if !u.Active || u.Access == 0 {
		return Session{}, auth.ErrAccountDisabled
	}
	access, exp, err := s.codec.EncodeAccess(u.Claims())
	if err != nil {
		return Session{}, err
	}
	return Session{User: u.Public(), AccessToken: access, AccessExpiresAt: exp}, nil
}

// CheckAuth resolves the current session from whichever token is usable. When
// only the refresh token is valid it transparently mints a new access token
// and reports refreshed=true so the caller can re-set the cookie.
func (s *Service) CheckAuth(ctx context.Context, accessToken, refreshToken string) (sess Session, refreshed bool, err error) {
	if claims, decodeErr := s.codec.DecodeAccess(accessToken); decodeErr == nil {
		u, findErr := s.users.Find(ctx, claims.UserID)
		if findErr != nil {
			if errors.Is(findErr, user.ErrNotFound) {
				return Session{}, false, auth.ErrInvalidToken
			}
			return Session{}, false, findErr
		}
		return Session{User: u.Public()}, false, nil
	}
	if strings.TrimSpace(refreshToken) == "" {
		return Session{}, false, auth.ErrUnauthenticated
	}
	sess, err = s.Refresh(ctx, refreshToken)
	if err != nil {
		return Session{}, false, err
	}
	return sess, true, nil
}

// Authenticate verifies an access token and returns its claims. No store
// lookup happens here; the claims carry everything authorization needs, and
// account-state changes take effect on the next refresh.
func (s *Service) Authenticate(accessToken string) (*auth.Claims, error) {
	return s.codec.DecodeAccess(accessToken)
}

// ChangePassword verifies the current password and writes a new hash.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	if len(next) < 6 {
		return user.ErrInvalidInput
	}
	u, err := s.users.Find(ctx, userID)
	if err != nil {
		return err
	}
	if err := auth.VerifyPassword(u.PasswordHash, current); err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// RequestPasswordReset issues a single active reset token and hands it to the
// mail collaborator. The previous token, if any, is overwritten.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		return err
	}
	token := ids.NewSecure()
	expires := s.now().UTC().Add(resetTokenTTL)
	if err := s.users.SetResetToken(ctx, u.ID, token, expires); err != nil {
		return err
	}
	return s.mailer.SendPasswordReset(ctx, u.Email, token)
}

// ResetPassword consumes an unexpired reset token and rewrites the hash.
func (s *Service) ResetPassword(ctx context.Context, token, next string) error {
	if len(next) < 6 {
		return user.ErrInvalidInput
	}
	u, err := s.users.ConsumeResetToken(ctx, strings.TrimSpace(token))
	if err != nil {
		return err
	}
	hash, err := auth.HashPassword(next)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, u.ID, hash)
}

func (s *Service) issue(u *user.User) (Session, error) {
	access, accessExp, err := s.codec.EncodeAccess(u.Claims())
	if err != nil {
		return Session{}, err
	}
	refresh, refreshExp, err := s.codec.EncodeRefresh(u.ID)
	if err != nil {
		return Session{}, err
	}
	return Session{
		User:             u.Public(),
		AccessToken:      access,
		AccessExpiresAt:  accessExp,
		RefreshToken:     refresh,
		RefreshExpiresAt: refreshExp,
	}, nil
}
