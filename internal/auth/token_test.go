package auth

import (
	"errors"
	"testing"
	"time"
)

func testClaims() Claims {
	return Claims{
		UserID: 42,
		Name:   "ACME",
		Email:  "buyer@acme.ru",
		INN:    "7701234567",
		Role:   RoleClient,
		Access: 1,
	}
}

func TestCodecRoundTrip(t *testing.T) {
	codec, err := NewCodec("test-secret")
	if err != nil {
		t.Fatalf("NewCodec: %v", err)
	}

	token, exp, err := codec.EncodeAccess(testClaims())
	if err != nil {
		t.Fatalf("EncodeAccess: %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expected future expiry, got %v", exp)
	}

	claims, err := codec.DecodeAccess(token)
	if err != nil {
		t.Fatalf("DecodeAccess: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "buyer@acme.ru" || claims.Role != RoleClient {
		t.Fatalf("claims not preserved: %+v", claims)
	}
	if claims.INN != "7701234567" || claims.Access != 1 {
		t.Fatalf("claims not preserved: %+v", claims)
	}
}

func TestCodecRejectsForeignSecret(t *testing.T) {
	signer, _ := NewCodec("secret-a")
	verifier, _ := NewCodec("secret-b")

	token, _, err := signer.EncodeAccess(testClaims())
	if err != nil {
		t.Fatalf("EncodeAccess: %v", err)
	}
	if _, err := verifier.DecodeAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestCodecReportsExpiry(t *testing.T) {
	issued := time.Now().Add(-time.Hour)
	signer, _ := NewCodec("test-secret", WithClock(func() time.Time { return issued }))

	token, _, err := signer.EncodeAccess(testClaims())
	if err != nil {
		t.Fatalf("EncodeAccess: %v", err)
	}

	verifier, _ := NewCodec("test-secret")
	if _, err := verifier.DecodeAccess(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestCodecRejectsWrongTokenType(t *testing.T) {
	codec, _ := NewCodec("test-secret")

	refresh, _, err := codec.EncodeRefresh(7)
	if err != nil {
		t.Fatalf("EncodeRefresh: %v", err)
	}
	if _, err := codec.DecodeAccess(refresh); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("access decoder accepted refresh token: %v", err)
	}

	access, _, err := codec.EncodeAccess(testClaims())
	if err != nil {
		t.Fatalf("EncodeAccess: %v", err)
	}
	if _, err := codec.DecodeRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("refresh decoder accepted access token: %v", err)
	}
}

func TestCodecRejectsBadSchema(t *testing.T) {
	codec, _ := NewCodec("test-secret")

	cl := testClaims()
	cl.Role = "director"
	token, _, err := codec.EncodeAccess(cl)
	if err != nil {
		t.Fatalf("EncodeAccess: %v", err)
	}
	if _, err := codec.DecodeAccess(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected schema rejection, got %v", err)
	}

	if _, _, err := codec.EncodeAccess(Claims{Role: RoleClient}); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}

func TestCodecRefreshCarriesIDOnly(t *testing.T) {
	codec, _ := NewCodec("test-secret")

	token, _, err := codec.EncodeRefresh(42)
	if err != nil {
		t.Fatalf("EncodeRefresh: %v", err)
	}
	claims, err := codec.DecodeRefresh(token)
	if err != nil {
		t.Fatalf("DecodeRefresh: %v", err)
	}
	if claims.UserID != 42 {
		t.Fatalf("unexpected user id: %d", claims.UserID)
	}
	if claims.Email != "" || claims.Role != "" || claims.Name != "" {
		t.Fatalf("refresh token leaked profile claims: %+v", claims)
	}
}

func TestNewCodecRequiresSecret(t *testing.T) {
	if _, err := NewCodec("  "); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}
