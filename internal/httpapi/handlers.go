package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/obs"
	"molsnab.ru/internal/portal"
	"molsnab.ru/internal/session"
	"molsnab.ru/internal/user"
)

// ReadyProbe — простая проверка готовности (ping БД).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API — HTTP слой.
type API struct {
	mux        *http.ServeMux
	readyProbe ReadyProbe
	version    string

	sessions *session.Service
	users    user.Store
	catalog  portal.Store
	rules    []auth.Rule

	cookieSecure bool
	rateBurst    int
	ratePerSec   int
}

// Option configures the API.
type Option func(*API)

// WithCookieSecure toggles the Secure attribute on session cookies.
func WithCookieSecure(secure bool) Option {
	return func(a *API) { a.cookieSecure = secure }
}

// WithRules overrides the authorization matrix.
func WithRules(rules []auth.Rule) Option {
	return func(a *API) {
		if len(rules) > 0 {
			a.rules = rules
		}
	}
}

// WithRateLimit overrides the per-IP token bucket parameters.
func WithRateLimit(burst, perSecond int) Option {
	return func(a *API) {
		if burst > 0 && perSecond > 0 {
			a.rateBurst = burst
			a.ratePerSec = perSecond
		}
	}
}

func New(rp ReadyProbe, version string, sessions *session.Service, users user.Store, catalog portal.Store, opts ...Option) *API {
	a := &API{
		mux:          http.NewServeMux(),
		readyProbe:   rp,
		version:      version,
		sessions:     sessions,
		users:        users,
		catalog:      catalog,
		rules:        auth.DefaultRules,
		cookieSecure: true,
		rateBurst:    50,
		ratePerSec:   25,
	}
	for _, opt := range opts {
		opt(a)
	}

	// health/ready/info
	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.HandleFunc("/v1/info", a.Info)

	// Prometheus metrics
	a.mux.Handle("/metrics", obs.Handler())

	// сессии и учетные данные
	a.mux.HandleFunc("/login", a.handleLogin)
	a.mux.HandleFunc("/register", a.handleRegister)
	a.mux.HandleFunc("/logout", a.handleLogout)
	a.mux.HandleFunc("/checkAuth", a.handleCheckAuth)
	a.mux.HandleFunc("/refresh", a.handleRefresh)
	a.mux.HandleFunc("/password/forgot", a.handleForgotPassword)
	a.mux.HandleFunc("/password/reset", a.handleResetPassword)
	a.mux.HandleFunc("/password/change", a.handleChangePassword)

	// страницы для браузерных редиректов gatekeeper'а
	a.mux.HandleFunc("/403", a.Forbidden)

	// защищенные разделы
	a.mux.HandleFunc("/users", a.handleUsersCollection)
	a.mux.HandleFunc("/personal-account/", a.handlePersonalAccount)
	a.mux.HandleFunc("/contracts", a.handleContracts)
	a.mux.HandleFunc("/orders", a.handleOrders)
	a.mux.HandleFunc("/price", a.handlePrice)

	// статика для страниц входа
	a.mux.Handle("/assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/assets"))))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	return a
}

// Handler возвращает полностью обёрнутый http.Handler для сервера.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withGatekeeper(h)
	h = RateLimit(h, a.rateBurst, a.ratePerSec)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "molsnab-portal",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "molsnab-portal",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// Forbidden serves the 403 surface browsers are redirected to.
func (a *API) Forbidden(w http.ResponseWriter, r *http.Request) {
	if wantsHTML(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<!doctype html><title>403</title><h1>Доступ запрещён</h1><p><a href=\"/login\">Войти под другой учетной записью</a></p>"))
		return
	}
	writeError(w, r, http.StatusForbidden, "access denied")
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}

// handleAuthError maps domain errors onto HTTP statuses. Unknown email on
// login deliberately surfaces as 404 while a wrong password is 401; the split
// is part of the portal's documented behavior.
func handleAuthError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "user not found")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, r, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, auth.ErrAccountDisabled):
		writeError(w, r, http.StatusForbidden, "account disabled")
	case errors.Is(err, auth.ErrTokenExpired):
		writeError(w, r, http.StatusUnauthorized, "token expired")
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, auth.ErrForbidden):
		writeError(w, r, http.StatusForbidden, "access denied")
	case errors.Is(err, user.ErrEmailTaken):
		writeError(w, r, http.StatusConflict, "email already registered")
	case errors.Is(err, user.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, "invalid input")
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
