package httpapi

import (
	"net/http"
	"time"

	"molsnab.ru/internal/session"
)

const (
	accessCookieName  = "access_token"
	refreshCookieName = "refresh_token"
)

// setSessionCookies writes both tokens as http-only cookies. The browser never
// sees token contents from script; SameSite=Lax keeps top-level navigation
// working while blocking cross-site POSTs.
func (a *API) setSessionCookies(w http.ResponseWriter, sess session.Session) {
	a.setAccessCookie(w, sess.AccessToken, sess.AccessExpiresAt)
	if sess.RefreshToken != "" {
		http.SetCookie(w, &http.Cookie{
			Name:     refreshCookieName,
			Value:    sess.RefreshToken,
			Path:     "/",
			Expires:  sess.RefreshExpiresAt,
			HttpOnly: true,
			Secure:   a.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

func (a *API) setAccessCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     accessCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   a.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookies expires both cookies. Logout is purely client-side
// forgetting; the tokens themselves stay valid until expiry.
func (a *API) clearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{accessCookieName, refreshCookieName} {
		http.SetCookie(w, &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   a.cookieSecure,
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// cookieValue returns the named cookie value or "".
func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
