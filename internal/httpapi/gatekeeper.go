package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"molsnab.ru/internal/auth"
)

var publicPaths = []string{
	"/login",
	"/register",
	"/logout",
	"/checkAuth",
	"/refresh",
	"/metrics",
	"/healthz",
	"/readyz",
	"/v1/info",
	"/403",
	"/",
}
var publicPrefixes = []string{
	"/assets/",
	"/password/",
}

// withGatekeeper guards the protected path prefixes. It validates the access
// cookie and evaluates the role/ownership matrix before the mux ever sees the
// request. It never mints tokens; an expired access token here means the
// client must go through /checkAuth or /refresh first.
//
// Browser navigations get redirects to the login and 403 surfaces; API
// clients get JSON errors.
func (a *API) withGatekeeper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		if _, protected := auth.Match(a.rules, r.URL.Path); !protected {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := a.sessions.Authenticate(cookieValue(r, accessCookieName))
		if err != nil {
			a.denyUnauthenticated(w, r)
			return
		}

		if err := auth.Authorize(a.rules, r.URL.Path, claims); err != nil {
			if errors.Is(err, auth.ErrForbidden) {
				a.denyForbidden(w, r)
				return
			}
			a.denyUnauthenticated(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	})
}

func (a *API) denyUnauthenticated(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	writeError(w, r, http.StatusUnauthorized, "authentication required")
}

func (a *API) denyForbidden(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		http.Redirect(w, r, "/403", http.StatusFound)
		return
	}
	writeError(w, r, http.StatusForbidden, "access denied")
}

// wantsHTML reports whether the request is a browser navigation rather than
// an API call.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isPublicPath(path string) bool {
	for _, p := range publicPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range publicPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
