package auth

import (
	"errors"
	"testing"
)

func claimsFor(id int64, role Role) *Claims {
	return &Claims{UserID: id, Role: role, Access: 1, TokenType: TokenTypeAccess}
}

func TestAuthorizeMatrix(t *testing.T) {
	cases := []struct {
		name   string
		path   string
		claims *Claims
		want   error
	}{
		{"unprotected path no claims", "/login", nil, nil},
		{"unprotected path with claims", "/healthz", claimsFor(7, RoleClient), nil},
		{"protected path no claims", "/contracts", nil, ErrUnauthenticated},
		{"admin page as admin", "/users", claimsFor(1, RoleAdmin), nil},
		{"admin page as client", "/users", claimsFor(7, RoleClient), ErrForbidden},
		{"admin page as manager", "/users", claimsFor(7, RoleManager), ErrForbidden},
		{"own personal account", "/personal-account/7", claimsFor(7, RoleClient), nil},
		{"foreign personal account", "/personal-account/42", claimsFor(7, RoleClient), ErrForbidden},
		{"foreign personal account as manager", "/personal-account/42", claimsFor(7, RoleManager), ErrForbidden},
		{"foreign personal account as admin", "/personal-account/42", claimsFor(7, RoleAdmin), nil},
		{"personal account subpage", "/personal-account/7/orders", claimsFor(7, RoleClient), nil},
		{"personal account bad id", "/personal-account/abc", claimsFor(7, RoleClient), ErrForbidden},
		{"contracts as client", "/contracts", claimsFor(7, RoleClient), nil},
		{"orders as manager", "/orders", claimsFor(7, RoleManager), nil},
		{"price as admin", "/price", claimsFor(1, RoleAdmin), nil},
		{"users subpath as client", "/users/7", claimsFor(7, RoleClient), ErrForbidden},
		{"sibling of admin page", "/users-export", nil, nil},
		{"sibling of price page", "/priceless", nil, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Authorize(DefaultRules, tc.path, tc.claims)
			if !errors.Is(err, tc.want) && !(err == nil && tc.want == nil) {
				t.Fatalf("Authorize(%q) = %v, want %v", tc.path, err, tc.want)
			}
		})
	}
}

func TestMatchIsOrdered(t *testing.T) {
	rule, ok := Match(DefaultRules, "/personal-account/7")
	if !ok || !rule.OwnerBound {
		t.Fatalf("expected owner-bound rule, got %+v ok=%v", rule, ok)
	}
	if _, ok := Match(DefaultRules, "/assets/logo.png"); ok {
		t.Fatalf("assets must not match a protected prefix")
	}
	if _, ok := Match(DefaultRules, "/users-export"); ok {
		t.Fatalf("prefix match must stop at segment boundaries")
	}
	if _, ok := Match(DefaultRules, "/users/7"); !ok {
		t.Fatalf("subpaths of a protected prefix must match")
	}
}
