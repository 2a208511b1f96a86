package auth

import (
	"strconv"
	"strings"
)

// Rule maps a URL path prefix to the set of roles allowed past it. When
// OwnerBound is set, the path segment following the prefix must be the
// caller's own user id; admins are exempt from the ownership check.
type Rule struct {
	Prefix     string
	Roles      []Role
	OwnerBound bool
}

func (r Rule) allows(role Role) bool {
	for _, allowed := range r.Roles {
		if allowed == role {
			return true
		}
	}
	return false
}

// DefaultRules is the static authorization matrix over protected path
// prefixes. Rules are evaluated in order; the first match decides. The set is
// total over protected prefixes: once a path matches, the outcome is an
// explicit allow or deny, never an implicit allow.
var DefaultRules = []Rule{
	{Prefix: "/personal-account/", Roles: []Role{RoleClient, RoleAdmin, RoleManager}, OwnerBound: true},
	{Prefix: "/users", Roles: []Role{RoleAdmin}},
	{Prefix: "/contracts", Roles: []Role{RoleClient, RoleManager, RoleAdmin}},
	{Prefix: "/orders", Roles: []Role{RoleClient, RoleManager, RoleAdmin}},
	{Prefix: "/price", Roles: []Role{RoleClient, RoleManager, RoleAdmin}},
}

// Match returns the first rule covering path.
func Match(rules []Rule, path string) (Rule, bool) {
	for _, rule := range rules {
		if matchPrefix(path, rule.Prefix) {
			return rule, true
		}
	}
	return Rule{}, false
}

// matchPrefix matches on segment boundaries: /users covers /users and
// /users/7 but never /users-export.
func matchPrefix(path, prefix string) bool {
	if strings.HasSuffix(prefix, "/") {
		return strings.HasPrefix(path, prefix)
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

// Authorize evaluates the rule set for path. It returns nil when the path is
// not protected or all checks pass, ErrUnauthenticated when a protected path
// is entered without claims, and ErrForbidden on a role or ownership
// violation.
//
// Both the boundary middleware and every protected handler consume this
// single evaluator, so the two layers cannot drift apart.
func Authorize(rules []Rule, path string, claims *Claims) error {
	rule, ok := Match(rules, path)
	if !ok {
		return nil
	}
	if claims == nil {
		return ErrUnauthenticated
	}
	if !rule.allows(claims.Role) {
		return ErrForbidden
	}
	if rule.OwnerBound && claims.Role != RoleAdmin {
		if ownerID, ok := pathID(path, rule.Prefix); !ok || ownerID != claims.UserID {
			return ErrForbidden
		}
	}
	return nil
}

// pathID extracts the numeric id segment immediately after prefix.
func pathID(path, prefix string) (int64, bool) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
