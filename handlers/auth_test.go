package handlers

import (
	"net/http"
	"testing"

	"biblioteca-backend/middleware"
	"biblioteca-backend/models"
)

func TestLogin_Success(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "alice@example.com", "correct", models.RoleAdmin, true)

	for _, identifier := range []string{"alice@example.com", "alice", "ALICE", "Alice@Example.COM"} {
		rec := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
			"identifier": identifier,
			"password":   "correct",
		})
		if rec.Code != http.StatusOK {
			t.Fatalf("identifier %q: status %d body %s", identifier, rec.Code, rec.Body.String())
		}
		var resp LoginResponse
		decodeBody(t, rec, &resp)
		if resp.Username != "alice" || resp.Email != "alice@example.com" || resp.Role != models.RoleAdmin {
			t.Fatalf("identifier %q: unexpected response %+v", identifier, resp)
		}
		if resp.Access == "" || resp.Refresh == "" {
			t.Fatalf("identifier %q: missing token pair", identifier)
		}

		access, err := middleware.ParseToken(resp.Access, testSecret)
		if err != nil {
			t.Fatalf("parse access token: %v", err)
		}
		if access.Role != models.RoleAdmin || access.Username != "alice" || access.TokenType != middleware.TokenTypeAccess {
			t.Fatalf("unexpected access claims %+v", access)
		}
		refresh, err := middleware.ParseToken(resp.Refresh, testSecret)
		if err != nil {
			t.Fatalf("parse refresh token: %v", err)
		}
		if refresh.TokenType != middleware.TokenTypeRefresh {
			t.Fatalf("unexpected refresh claims %+v", refresh)
		}
	}
}

func TestLogin_EmailField(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "alice@example.com", "correct", models.RoleAdmin, true)

	rec := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "correct",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d body %s", rec.Code, rec.Body.String())
	}
}

// All failure modes must return the identical error shape so responses do
// not reveal whether an account exists.
func TestLogin_FailuresIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	env.seedUser(t, "alice", "alice@example.com", "correct", models.RoleAdmin, true)
	env.seedUser(t, "bob", "bob@example.com", "correct", models.RoleUser, false)

	cases := []struct {
		name       string
		identifier string
		password   string
	}{
		{"wrong password", "alice@example.com", "wrong"},
		{"unknown identifier", "nobody@example.com", "correct"},
		{"inactive user", "bob@example.com", "correct"},
		{"inactive user by username", "bob", "correct"},
		{"empty password", "alice@example.com", ""},
	}

	want := `{"detail":"Credenciales inválidas"}`
	for _, tc := range cases {
		rec := env.doJSON(t, http.MethodPost, "/api/login", "", map[string]string{
			"identifier": tc.identifier,
			"password":   tc.password,
		})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status %d", tc.name, rec.Code)
		}
		if got := trimBody(rec.Body.String()); got != want {
			t.Fatalf("%s: body %q, want %q", tc.name, got, want)
		}
	}
}

func TestLogin_InvalidJSON(t *testing.T) {
	env := newTestEnv(t)
	req := env.doJSON(t, http.MethodPost, "/api/login", "", nil)
	if req.Code != http.StatusBadRequest {
		t.Fatalf("status %d", req.Code)
	}
}

func trimBody(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
