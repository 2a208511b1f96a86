package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	defaultIssuer     = "molsnab-portal"
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Codec encodes and decodes signed identity tokens. It performs no store or
// network access; expiry and signature are the sole validity conditions.
type Codec struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// CodecOption configures Codec behavior.
type CodecOption func(*Codec) error

// WithIssuer overrides the token issuer claim.
func WithIssuer(issuer string) CodecOption {
	return func(c *Codec) error {
		if iss := strings.TrimSpace(issuer); iss != "" {
			c.issuer = iss
		}
		return nil
	}
}

// WithAccessTTL configures access token lifetime.
func WithAccessTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) error {
		if ttl > 0 {
			c.accessTTL = ttl
		}
		return nil
	}
}

// WithRefreshTTL configures refresh token lifetime.
func WithRefreshTTL(ttl time.Duration) CodecOption {
	return func(c *Codec) error {
		if ttl > 0 {
			c.refreshTTL = ttl
		}
		return nil
	}
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) CodecOption {
	return func(c *Codec) error {
		if fn != nil {
			c.now = fn
		}
		return nil
	}
}

// NewCodec constructs a Codec. A missing secret is a programmer error and is
// the only construction failure.
func NewCodec(secret string, opts ...CodecOption) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	c := &Codec{
		secret:     []byte(secret),
		issuer:     defaultIssuer,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// AccessTTL returns the configured access token lifetime.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// EncodeAccess signs an access token for the given claims using HS256.
func (c *Codec) EncodeAccess(cl Claims) (string, time.Time, error) {
	cl.TokenType = TokenTypeAccess
	return c.encode(cl, c.accessTTL)
}

// EncodeRefresh signs a long-lived refresh token carrying only the user id.
func (c *Codec) EncodeRefresh(userID int64) (string, time.Time, error) {
	return c.encode(Claims{UserID: userID, TokenType: TokenTypeRefresh}, c.refreshTTL)
}

func (c *Codec) encode(cl Claims, ttl time.Duration) (string, time.Time, error) {
	if cl.UserID <= 0 {
		return "", time.Time{}, errors.New("auth: user id is required")
	}
	now := c.now().UTC()
	exp := now.Add(ttl)
	cl.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    c.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, cl).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// DecodeAccess verifies an access token and returns its claims. It returns
// ErrTokenExpired for routine expiry and ErrInvalidToken for everything else;
// it never returns claims alongside an error.
func (c *Codec) DecodeAccess(token string) (*Claims, error) {
	return c.decode(token, TokenTypeAccess)
}

// DecodeRefresh verifies a refresh token and returns its id-only claims.
func (c *Codec) DecodeRefresh(token string) (*Claims, error) {
	return c.decode(token, TokenTypeRefresh)
}

func (c *Codec) decode(token, tokenType string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuer(c.issuer),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := claims.validateSchema(tokenType); err != nil {
		return nil, err
	}
	return claims, nil
}
