package server

import (
	"net/http"
	"testing"

	"github.com/kazilink-dev/kazilink/internal/guard"
)

func TestProtectedRouteWithoutToken(t *testing.T) {
	s := newTestServer(t)

	paths := []string{
		"/api/auth/me",
		"/api/employer/jobs",
		"/api/freelancer/jobs",
		"/api/notifications",
	}

	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, path, "", nil)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			if got := w.Header().Get("Location"); got != guard.LoginPath {
				t.Errorf("Location = %q, want %q", got, guard.LoginPath)
			}

			var body map[string]string
			decodeJSON(t, w, &body)
			if body["redirect"] != guard.LoginPath {
				t.Errorf("redirect = %q", body["redirect"])
			}
			// The denied path is recorded so the client can return after login
			if body["from"] != path {
				t.Errorf("from = %q, want %q", body["from"], path)
			}
		})
	}
}

func TestProtectedRouteWithGarbageToken(t *testing.T) {
	s := newTestServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/auth/me", "not-a-jwt", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	if got := w.Header().Get("Location"); got != guard.LoginPath {
		t.Errorf("Location = %q", got)
	}
}

func TestRoleMismatchRedirectsToOwnHome(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	tests := []struct {
		name     string
		token    string
		path     string
		wantHome string
	}{
		{
			name:     "freelancer on employer route",
			token:    freelancerToken,
			path:     "/api/employer/jobs",
			wantHome: "/freelancer/home",
		},
		{
			name:     "employer on freelancer route",
			token:    employerToken,
			path:     "/api/freelancer/jobs",
			wantHome: "/employer/home",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, tt.path, tt.token, nil)

			// Wrong role is a silent redirect home, not a 403
			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303, body = %s", w.Code, w.Body.String())
			}
			if got := w.Header().Get("Location"); got != tt.wantHome {
				t.Errorf("Location = %q, want %q", got, tt.wantHome)
			}

			var body map[string]string
			decodeJSON(t, w, &body)
			if body["redirect"] != tt.wantHome {
				t.Errorf("redirect = %q, want %q", body["redirect"], tt.wantHome)
			}
		})
	}
}

func TestMatchingRoleIsAllowed(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	tests := []struct {
		name  string
		token string
		path  string
	}{
		{name: "employer home", token: employerToken, path: "/api/employer/home"},
		{name: "employer jobs", token: employerToken, path: "/api/employer/jobs"},
		{name: "freelancer home", token: freelancerToken, path: "/api/freelancer/home"},
		{name: "freelancer jobs", token: freelancerToken, path: "/api/freelancer/jobs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, tt.path, tt.token, nil)
			if w.Code != http.StatusOK {
				t.Errorf("status = %d, body = %s", w.Code, w.Body.String())
			}
		})
	}
}

func TestResolveHome(t *testing.T) {
	s := newTestServer(t)
	employerToken, _ := signupAs(t, s, "employer@example.com", "employer")
	freelancerToken, _ := signupAs(t, s, "freelancer@example.com", "freelancer")

	tests := []struct {
		name  string
		token string
		want  string
	}{
		{name: "signed out", token: "", want: guard.LoginPath},
		{name: "garbage token", token: "garbage", want: guard.LoginPath},
		{name: "employer", token: employerToken, want: "/employer/home"},
		{name: "freelancer", token: freelancerToken, want: "/freelancer/home"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodGet, "/home", tt.token, nil)
			if w.Code != http.StatusSeeOther {
				t.Fatalf("status = %d, want 303", w.Code)
			}
			if got := w.Header().Get("Location"); got != tt.want {
				t.Errorf("Location = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolveHomeAfterLogout(t *testing.T) {
	s := newTestServer(t)
	token, _ := signupAs(t, s, "employer@example.com", "employer")

	w := doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}

	// A revoked token resolves like no token at all
	w = doJSON(t, s, http.MethodGet, "/home", token, nil)
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", w.Code)
	}
	if got := w.Header().Get("Location"); got != guard.LoginPath {
		t.Errorf("Location = %q, want %q", got, guard.LoginPath)
	}
}
