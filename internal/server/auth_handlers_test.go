package server

import (
	"net/http"
	"testing"
)

func TestSignupAndMe(t *testing.T) {
	s := newTestServer(t)

	token, userID := signupAs(t, s, "wanjiku@example.com", "freelancer")

	w := doJSON(t, s, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("me status = %d, body = %s", w.Code, w.Body.String())
	}

	var me UserDetail
	decodeJSON(t, w, &me)
	if me.ID != userID {
		t.Errorf("me.ID = %q, want %q", me.ID, userID)
	}
	if me.Email != "wanjiku@example.com" {
		t.Errorf("me.Email = %q", me.Email)
	}
	if me.Role != "freelancer" {
		t.Errorf("me.Role = %q", me.Role)
	}
}

func TestSignupDuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	signupAs(t, s, "dup@example.com", "employer")

	w := doJSON(t, s, http.MethodPost, "/api/auth/signup", "", SignupRequest{
		FirstName: "Other",
		LastName:  "Person",
		Email:     "dup@example.com",
		Password:  "secret123",
		Role:      "freelancer",
	})
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestSignupValidation(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		req  SignupRequest
	}{
		{
			name: "missing email",
			req:  SignupRequest{FirstName: "A", LastName: "B", Password: "secret123", Role: "employer"},
		},
		{
			name: "short password",
			req:  SignupRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "123", Role: "employer"},
		},
		{
			name: "bad role",
			req:  SignupRequest{FirstName: "A", LastName: "B", Email: "a@b.com", Password: "secret123", Role: "admin"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/auth/signup", "", tt.req)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	s := newTestServer(t)
	signupAs(t, s, "baraka@example.com", "employer")

	w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email:    "baraka@example.com",
		Password: "secret123",
		Role:     "employer",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp LoginResponse
	decodeJSON(t, w, &resp)
	if resp.Token == "" {
		t.Error("login response missing token")
	}
	if resp.User == nil || resp.User.Role != "employer" {
		t.Errorf("login user = %+v", resp.User)
	}
}

func TestLoginRejections(t *testing.T) {
	s := newTestServer(t)
	signupAs(t, s, "baraka@example.com", "employer")

	tests := []struct {
		name string
		req  LoginRequest
	}{
		{
			name: "wrong password",
			req:  LoginRequest{Email: "baraka@example.com", Password: "wrong-password", Role: "employer"},
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "nobody@example.com", Password: "secret123", Role: "employer"},
		},
		{
			// Logging in under the other role must look exactly like bad credentials
			name: "role mismatch",
			req:  LoginRequest{Email: "baraka@example.com", Password: "secret123", Role: "freelancer"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s, http.MethodPost, "/api/auth/login", "", tt.req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}

			var body map[string]string
			decodeJSON(t, w, &body)
			if body["error"] != "Invalid email or password" {
				t.Errorf("error = %q, want generic message", body["error"])
			}
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	token, _ := signupAs(t, s, "wanjiku@example.com", "freelancer")

	w := doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d, body = %s", w.Code, w.Body.String())
	}

	// The revoked token no longer opens any authenticated route
	w = doJSON(t, s, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout status = %d, want 401", w.Code)
	}

	// Logging out twice stays quiet: the jti is simply re-revoked, but
	// the request itself fails authentication first
	w = doJSON(t, s, http.MethodPost, "/api/auth/logout", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("second logout status = %d, want 401", w.Code)
	}
}

func TestUpdateProfile(t *testing.T) {
	s := newTestServer(t)
	token, _ := signupAs(t, s, "wanjiku@example.com", "freelancer")

	title := "Full-stack Developer"
	location := "Nairobi"
	rate := 2500
	w := doJSON(t, s, http.MethodPatch, "/api/freelancer/profile", token, UpdateProfileRequest{
		Title:       &title,
		Location:    &location,
		RatePerHour: &rate,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/freelancer/profile", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("get profile status = %d", w.Code)
	}

	var profile map[string]interface{}
	decodeJSON(t, w, &profile)
	if profile["title"] != "Full-stack Developer" {
		t.Errorf("title = %v", profile["title"])
	}
	if profile["location"] != "Nairobi" {
		t.Errorf("location = %v", profile["location"])
	}
}
