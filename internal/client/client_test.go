package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/session"
)

// newMockAPI starts a test server that mimics the API's auth endpoints
func newMockAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()

	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		if req["email"] != "wanjiku@example.com" || req["password"] != "secret123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid email or password"})
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "test-token",
			"user": map[string]string{
				"id":        "user-1",
				"email":     req["email"],
				"firstName": "Wanjiku",
				"lastName":  "Kamau",
				"role":      req["role"],
			},
		})
	})

	mux.HandleFunc("/api/auth/signup", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"token": "signup-token",
			"user": map[string]string{
				"id":        "user-2",
				"email":     req["email"],
				"firstName": req["first_name"],
				"lastName":  req["last_name"],
				"role":      req["role"],
			},
		})
	})

	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/api/freelancer/jobs", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		jobs := []map[string]interface{}{
			{"id": "job-1", "title": "M-Pesa Integration Developer", "type": "contract", "urgent": true},
		}
		if r.URL.Query().Get("q") == "nothing" {
			jobs = nil
		}
		json.NewEncoder(w).Encode(jobs)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClientLogin(t *testing.T) {
	api := newMockAPI(t)
	c := New(api.URL)

	user, token, err := c.Login(context.Background(), "wanjiku@example.com", "secret123", models.RoleFreelancer)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token != "test-token" {
		t.Errorf("token = %q", token)
	}
	if user.ID != "user-1" || user.FirstName != "Wanjiku" {
		t.Errorf("user = %+v", user)
	}
	if user.Role != models.RoleFreelancer {
		t.Errorf("role = %q", user.Role)
	}
}

func TestClientLoginRejected(t *testing.T) {
	api := newMockAPI(t)
	c := New(api.URL)

	_, _, err := c.Login(context.Background(), "wanjiku@example.com", "wrong", models.RoleFreelancer)
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}
}

func TestClientSignup(t *testing.T) {
	api := newMockAPI(t)
	c := New(api.URL)

	user, token, err := c.Signup(context.Background(), session.SignupData{
		FirstName: "Baraka",
		LastName:  "Mwangi",
		Email:     "baraka@example.com",
		Password:  "secret123",
		Role:      models.RoleEmployer,
	})
	if err != nil {
		t.Fatalf("Signup() error = %v", err)
	}
	if token != "signup-token" {
		t.Errorf("token = %q", token)
	}
	if user.Email != "baraka@example.com" || user.Role != models.RoleEmployer {
		t.Errorf("user = %+v", user)
	}
}

func TestClientLogout(t *testing.T) {
	api := newMockAPI(t)
	c := New(api.URL)

	if err := c.Logout(context.Background(), "test-token"); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if err := c.Logout(context.Background(), "stale-token"); err == nil {
		t.Fatal("expected error for rejected token")
	}
}

func TestClientBrowseJobs(t *testing.T) {
	api := newMockAPI(t)
	c := New(api.URL)

	jobs, err := c.BrowseJobs(context.Background(), "test-token", "")
	if err != nil {
		t.Fatalf("BrowseJobs() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "M-Pesa Integration Developer" {
		t.Errorf("jobs = %+v", jobs)
	}

	jobs, err = c.BrowseJobs(context.Background(), "test-token", "nothing")
	if err != nil {
		t.Fatalf("BrowseJobs() error = %v", err)
	}
	if len(jobs) != 0 {
		t.Errorf("filtered jobs = %+v", jobs)
	}
}

func TestClientUnreachableServer(t *testing.T) {
	c := New("http://127.0.0.1:1")

	if _, _, err := c.Login(context.Background(), "a@b.com", "x", models.RoleEmployer); err == nil {
		t.Fatal("expected error for unreachable server")
	}
}
