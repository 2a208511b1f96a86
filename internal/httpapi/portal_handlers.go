package httpapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"molsnab.ru/internal/audit"
	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/user"
)

// authenticate re-runs token validation and the authorization matrix inside
// the handler. The gatekeeper already did both, but handlers stay correct
// even if routed around the middleware.
func (a *API) authenticate(r *http.Request) (*auth.Claims, error) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		var err error
		claims, err = a.sessions.Authenticate(cookieValue(r, accessCookieName))
		if err != nil {
			return nil, err
		}
	}
	if err := auth.Authorize(a.rules, r.URL.Path, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	INN      string `json:"inn"`
	Code     string `json:"code"`
	Access   *int   `json:"access"`
}

func (a *API) handleUsersCollection(w http.ResponseWriter, r *http.Request) {
	claims, err := a.authenticate(r)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	switch r.Method {
	case http.MethodGet:
		a.listUsers(w, r)
	case http.MethodPost:
		a.createUser(w, r, claims)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) listUsers(w http.ResponseWriter, r *http.Request) {
	records, err := a.users.List(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	items := make([]user.Public, 0, len(records))
	for _, u := range records {
		items = append(items, u.Public())
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"items": items,
		"as_of": time.Now().UTC(),
	})
}

func (a *API) createUser(w http.ResponseWriter, r *http.Request, actor *auth.Claims) {
	var req createUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	role, ok := auth.ParseRole(req.Role)
	if !ok {
		writeError(w, r, http.StatusBadRequest, "unknown role")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, r, http.StatusBadRequest, "password too short")
		return
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	access := 1
	if req.Access != nil {
		if *req.Access != 0 && *req.Access != 1 {
			writeError(w, r, http.StatusBadRequest, "access must be 0 or 1")
			return
		}
		access = *req.Access
	}
	u := &user.User{
		Email:        user.NormalizeEmail(req.Email),
		PasswordHash: hash,
		Role:         role,
		Access:       access,
		Active:       true,
		Name:         strings.TrimSpace(req.Name),
		INN:          strings.TrimSpace(req.INN),
		ContractCode: strings.TrimSpace(req.Code),
	}
	if u.Email == "" || !strings.Contains(u.Email, "@") {
		writeError(w, r, http.StatusBadRequest, "invalid email")
		return
	}
	if err := a.users.Create(r.Context(), u); err != nil {
		handleAuthError(w, r, err)
		return
	}

	ctx := auth.ContextWithClaims(r.Context(), actor)
	_ = audit.LogEvent(ctx, "users.create", map[string]any{
		"created_id": u.ID,
		"email":      u.Email,
		"role":       string(role),
	})

	w.Header().Set("Location", "/personal-account/"+strconv.FormatInt(u.ID, 10))
	writeJSON(w, http.StatusCreated, map[string]any{"user": u.Public()})
}

// handlePersonalAccount serves the account card for one user. The ownership
// check lives in the authorization matrix: non-admins only pass when the path
// id is their own.
func (a *API) handlePersonalAccount(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.authenticate(r); err != nil {
		handleAuthError(w, r, err)
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/personal-account/")
	rest = strings.Trim(rest, "/")
	if idx := strings.IndexByte(rest, '/'); idx >= 0 {
		rest = rest[:idx]
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, r, http.StatusNotFound, "account not found")
		return
	}

	u, err := a.users.Find(r.Context(), id)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": u.Public()})
}

func (a *API) handleContracts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := a.authenticate(r)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var items any
	if claims.Role == auth.RoleAdmin {
		items, err = a.catalog.AllContracts(r.Context())
	} else {
		items, err = a.catalog.ContractsByUser(r.Context(), claims.UserID)
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handleOrders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	claims, err := a.authenticate(r)
	if err != nil {
		handleAuthError(w, r, err)
		return
	}

	var items any
	if claims.Role == auth.RoleAdmin {
		items, err = a.catalog.AllOrders(r.Context())
	} else {
		items, err = a.catalog.OrdersByUser(r.Context(), claims.UserID)
	}
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (a *API) handlePrice(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if _, err := a.authenticate(r); err != nil {
		handleAuthError(w, r, err)
		return
	}
	items, err := a.catalog.PriceList(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
