package httpapi

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"molsnab.ru/internal/auth"
	"molsnab.ru/internal/portal"
	"molsnab.ru/internal/user"
)

const htmlAccept = "text/html,application/xhtml+xml"

func itoa64(v int64) string { return strconv.FormatInt(v, 10) }

// seedAdmin plants an admin account directly in the store.
func seedAdmin(t *testing.T, users *user.Memory, email, password string) *user.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &user.User{
		Email:        email,
		PasswordHash: hash,
		Role:         auth.RoleAdmin,
		Access:       1,
		Active:       true,
		Name:         "Admin",
		INN:          "000000000",
	}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create admin: %v", err)
	}
	return u
}

func (c *apiClient) login(email, password string) {
	c.t.Helper()
	resp := c.post("/login", map[string]any{"email": email, "password": password}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.t.Fatalf("login failed: %d", resp.StatusCode)
	}
}

func TestGatekeeperRedirectsBrowserToLogin(t *testing.T) {
	env := newTestAPI(t)

	resp := env.api.get("/contracts", map[string]string{"Accept": htmlAccept})
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/login" {
		t.Fatalf("expected redirect to /login, got %q", loc)
	}
}

func TestGatekeeperRedirectsBrowserTo403(t *testing.T) {
	env := newTestAPI(t)
	api := env.api

	resp := api.register("owner@b.com", "secret1")
	body := decode[map[string]any](t, resp)
	ownID := int64(body["user"].(map[string]any)["id"].(float64))

	// Чужой личный кабинет.
	foreign := "/personal-account/999"
	if ownID == 999 {
		foreign = "/personal-account/998"
	}
	resp = api.get(foreign, map[string]string{"Accept": htmlAccept})
	resp.Body.Close()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/403" {
		t.Fatalf("expected redirect to /403, got %q", loc)
	}
}

func TestGatekeeperJSONErrors(t *testing.T) {
	env := newTestAPI(t)
	api := env.api

	resp := api.get("/contracts", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	errBody := decode[map[string]any](t, resp)
	if errBody["error"] == "" || errBody["error"] == nil {
		t.Fatal("expected error message in body")
	}

	resp = api.register("plain@b.com", "secret1")
	resp.Body.Close()

	resp = api.get("/users", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for client on admin path, got %d", resp.StatusCode)
	}
}

func TestRoleMatrixOverHTTP(t *testing.T) {
	env := newTestAPI(t)
	api := env.api

	admin := seedAdmin(t, env.users, "root@b.com", "adminpass")

	resp := api.register("shop@b.com", "secret1")
	body := decode[map[string]any](t, resp)
	clientID := int64(body["user"].(map[string]any)["id"].(float64))

	// Клиент видит свой кабинет, но не чужой и не /users.
	resp = api.get("/personal-account/"+itoa64(clientID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("own account: expected 200, got %d", resp.StatusCode)
	}
	resp = api.get("/personal-account/"+itoa64(admin.ID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("foreign account: expected 403, got %d", resp.StatusCode)
	}

	// Админ видит всё.
	api.login("root@b.com", "adminpass")
	resp = api.get("/users", nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin /users: expected 200, got %d", resp.StatusCode)
	}
	resp = api.get("/personal-account/"+itoa64(clientID), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin foreign account: expected 200, got %d", resp.StatusCode)
	}
}

func TestOwnershipScopedListings(t *testing.T) {
	env := newTestAPI(t)
	api := env.api

	resp := api.register("dairy@b.com", "secret1")
	body := decode[map[string]any](t, resp)
	clientID := int64(body["user"].(map[string]any)["id"].(float64))

	now := time.Now().UTC()
	env.portal.Seed(
		[]portal.Contract{
			{ID: 1, UserID: clientID, Code: "C1", Status: "active", SignedAt: now},
			{ID: 2, UserID: clientID + 100, Code: "C2", Status: "active", SignedAt: now},
		},
		[]portal.Order{
			{ID: 1, UserID: clientID, ContractID: 1, Status: "new", TotalKopecks: 150000, CreatedAt: now},
			{ID: 2, UserID: clientID + 100, ContractID: 2, Status: "new", TotalKopecks: 99000, CreatedAt: now},
		},
		[]portal.PriceItem{
			{ID: 1, SKU: "MLK-1", Name: "Молоко 3.2%", Unit: "шт", PriceKopecks: 8900, UpdatedAt: now},
		},
	)

	resp = api.get("/contracts", nil)
	listing := decode[map[string]any](t, resp)
	items := listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("client must only see own contracts, got %d", len(items))
	}

	resp = api.get("/orders", nil)
	listing = decode[map[string]any](t, resp)
	items = listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("client must only see own orders, got %d", len(items))
	}

	resp = api.get("/price", nil)
	listing = decode[map[string]any](t, resp)
	items = listing["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("price list must be visible, got %d items", len(items))
	}

	// Админ видит все контракты.
	seedAdmin(t, env.users, "boss@b.com", "adminpass")
	api.login("boss@b.com", "adminpass")
	resp = api.get("/contracts", nil)
	listing = decode[map[string]any](t, resp)
	items = listing["items"].([]any)
	if len(items) != 2 {
		t.Fatalf("admin must see all contracts, got %d", len(items))
	}
}

func TestAdminCreatesUser(t *testing.T) {
	env := newTestAPI(t)
	api := env.api

	seedAdmin(t, env.users, "root@b.com", "adminpass")
	api.login("root@b.com", "adminpass")

	resp := api.post("/users", map[string]any{
		"email":    "manager@b.com",
		"password": "secret1",
		"role":     "manager",
		"name":     "Manager",
		"inn":      "111111111",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	u := body["user"].(map[string]any)
	if u["role"] != "manager" {
		t.Fatalf("unexpected role: %v", u["role"])
	}

	resp = api.post("/users", map[string]any{
		"email":    "weird@b.com",
		"password": "secret1",
		"role":     "director",
	}, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown role, got %d", resp.StatusCode)
	}
}

func TestPublicEndpointsSkipGatekeeper(t *testing.T) {
	env := newTestAPI(t)

	for _, path := range []string{"/healthz", "/readyz", "/v1/info", "/metrics"} {
		resp := env.api.get(path, nil)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.StatusCode)
		}
	}
}
