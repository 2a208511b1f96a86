package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"molsnab.ru/internal/audit"
	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/session"
	"molsnab.ru/internal/user"
)

// loginPage is the navigation target for unauthenticated browsers. The real
// form lives in the frontend bundle under /assets/; this page only has to
// exist so the redirect lands somewhere sensible.
func (a *API) loginPage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte("<!doctype html><title>Вход</title><h1>Вход в портал</h1><p>Авторизуйтесь через форму портала.</p>"))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code"`
	Name     string `json:"name"`
	INN      string `json:"inn"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type changePasswordRequest struct {
	Current string `json:"current_password"`
	Next    string `json:"new_password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet && wantsHTML(r) {
		a.loginPage(w)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := a.sessions.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		_ = audit.LogEvent(r.Context(), "auth.login.denied", map[string]any{
			"email": user.NormalizeEmail(req.Email),
		})
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.login", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
	})

	a.setSessionCookies(w, sess)
	writeJSON(w, http.StatusOK, map[string]any{"user": sess.User})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sess, err := a.sessions.Register(r.Context(), session.Registration{
		Email:        req.Email,
		Password:     req.Password,
		ContractCode: req.Code,
		Name:         req.Name,
		INN:          req.INN,
		Address:      req.Address,
		Phone:        req.Phone,
	})
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.register", map[string]any{
		"user_id": sess.User.ID,
		"email":   sess.User.Email,
	})

	a.setSessionCookies(w, sess)
	w.Header().Set("Location", "/personal-account/"+strconv.FormatInt(sess.User.ID, 10))
	writeJSON(w, http.StatusCreated, map[string]any{"user": sess.User})
}

func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	if claims, err := a.sessions.Authenticate(cookieValue(r, accessCookieName)); err == nil {
		ctx := auth.ContextWithClaims(r.Context(), claims)
		_ = audit.LogEvent(ctx, "auth.logout", nil)
	}
	a.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{"message": "logged out"})
}

// handleCheckAuth resolves the current session. When the access token is
// unusable but the refresh token is valid, a fresh access token is minted and
// re-set transparently; the client only ever sees 200 {user} or 401.
func (a *API) handleCheckAuth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	access := cookieValue(r, accessCookieName)
	refresh := cookieValue(r, refreshCookieName)

	sess, refreshed, err := a.sessions.CheckAuth(r.Context(), access, refresh)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	if refreshed {
		_ = audit.LogEvent(r.Context(), "auth.refresh", map[string]any{
			"user_id": sess.User.ID,
			"via":     "checkAuth",
		})
		a.setAccessCookie(w, sess.AccessToken, sess.AccessExpiresAt)
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": sess.User})
}

// handleRefresh exchanges the refresh cookie for a new access token. The
// refresh token itself is never rotated here; it stays valid until expiry.
func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	refresh := cookieValue(r, refreshCookieName)
	if strings.TrimSpace(refresh) == "" {
		writeError(w, r, http.StatusUnauthorized, "no token")
		return
	}

	sess, err := a.sessions.Refresh(r.Context(), refresh)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) || errors.Is(err, auth.ErrTokenExpired) {
			writeError(w, r, http.StatusUnauthorized, "refresh expired")
			return
		}
		handleAuthError(w, r, err)
		return
	}

	_ = audit.LogEvent(r.Context(), "auth.refresh", map[string]any{
		"user_id": sess.User.ID,
		"via":     "refresh",
	})

	a.setAccessCookie(w, sess.AccessToken, sess.AccessExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{
		"user":        sess.User,
		"accessToken": sess.AccessToken,
		"expiresIn":   sess.ExpiresIn(time.Now().UTC()),
	})
}

// handleForgotPassword always answers 200 so the endpoint cannot be used to
// probe for registered emails, unlike login.
func (a *API) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req forgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sessions.RequestPasswordReset(r.Context(), req.Email); err != nil && !errors.Is(err, user.ErrNotFound) {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.forgot", map[string]any{
		"email": user.NormalizeEmail(req.Email),
	})
	writeJSON(w, http.StatusOK, map[string]any{"message": "reset instructions sent if the account exists"})
}

func (a *API) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sessions.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			writeError(w, r, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		handleAuthError(w, r, err)
		return
	}
	_ = audit.LogEvent(r.Context(), "auth.password.reset", nil)
	writeJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}

// handleChangePassword requires a live session; it re-verifies the current
// password before writing the new hash.
func (a *API) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}
	claims, err := a.sessions.Authenticate(cookieValue(r, accessCookieName))
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	var req changePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if err := a.sessions.ChangePassword(r.Context(), claims.UserID, req.Current, req.Next); err != nil {
		handleAuthError(w, r, err)
		return
	}
	ctx := auth.ContextWithClaims(r.Context(), claims)
	_ = audit.LogEvent(ctx, "auth.password.change", nil)
	writeJSON(w, http.StatusOK, map[string]any{"message": "password updated"})
}
