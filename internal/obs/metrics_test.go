package obs

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"":                           "/",
		"/metrics":                   "/metrics",
		"/personal-account/7":        "/personal-account/:id",
		"/personal-account/7/orders": "/personal-account/:id/orders",
		"/personal-account/abc":      "/personal-account/abc",
		"/contracts":                 "/contracts",
		"/price?format=xlsx":         "/price",
		"/users":                     "/users",
	}
	for input, expected := range cases {
		if got := CanonicalPath(input); got != expected {
			t.Fatalf("CanonicalPath(%q)=%q, want %q", input, got, expected)
		}
	}
}
