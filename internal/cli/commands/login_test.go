package commands

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// setTempHome points the session file at a throwaway home directory
func setTempHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func sessionFilePath(home string) string {
	return filepath.Join(home, ".config", "kazilink", "session.json")
}

// newMockAPI serves just enough of the auth surface for the login commands
func newMockAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["password"] != "secret123" {
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
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestRunLoginPersistsSession(t *testing.T) {
	home := setTempHome(t)
	api := newMockAPI(t)

	err := runLogin("wanjiku@example.com", "secret123", "freelancer", api.URL, false)
	if err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}

	// The session record survives on disk for the next invocation
	data, err := os.ReadFile(sessionFilePath(home))
	if err != nil {
		t.Fatalf("failed to read session file: %v", err)
	}
	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("failed to parse session file: %v", err)
	}
	if record["token"] != "test-token" {
		t.Errorf("persisted token = %q", record["token"])
	}
	if record["user"] == "" {
		t.Error("persisted user record is empty")
	}

	// A fresh store restores the session
	store, err := restoreSession(api.URL, false)
	if err != nil {
		t.Fatalf("restoreSession() error = %v", err)
	}
	if !store.IsAuthenticated() {
		t.Fatal("restored session should be authenticated")
	}
	if user := store.CurrentUser(); user == nil || user.Email != "wanjiku@example.com" {
		t.Errorf("restored user = %+v", user)
	}
}

func TestRunLoginBadCredentials(t *testing.T) {
	home := setTempHome(t)
	api := newMockAPI(t)

	err := runLogin("wanjiku@example.com", "wrong-password", "freelancer", api.URL, false)
	if err == nil {
		t.Fatal("expected error for bad credentials")
	}

	// Nothing is persisted on a failed login
	if _, err := os.Stat(sessionFilePath(home)); !os.IsNotExist(err) {
		t.Error("failed login must not write a session file")
	}
}

func TestRunLoginMissingEmail(t *testing.T) {
	setTempHome(t)
	t.Setenv("KAZILINK_EMAIL", "")

	if err := runLogin("", "secret123", "freelancer", "", false); err == nil {
		t.Fatal("expected error when email is missing")
	}
}

func TestRunLoginOffline(t *testing.T) {
	home := setTempHome(t)

	err := runLogin("offline@example.com", "any-password", "employer", "", true)
	if err != nil {
		t.Fatalf("runLogin() offline error = %v", err)
	}

	if _, err := os.Stat(sessionFilePath(home)); err != nil {
		t.Fatalf("offline login must persist a session: %v", err)
	}
}

func TestRunLogoutClearsSession(t *testing.T) {
	home := setTempHome(t)
	api := newMockAPI(t)

	if err := runLogin("wanjiku@example.com", "secret123", "freelancer", api.URL, false); err != nil {
		t.Fatalf("runLogin() error = %v", err)
	}

	if err := runLogout(api.URL, false); err != nil {
		t.Fatalf("runLogout() error = %v", err)
	}

	data, err := os.ReadFile(sessionFilePath(home))
	if err != nil {
		t.Fatalf("failed to read session file: %v", err)
	}
	var record map[string]string
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("failed to parse session file: %v", err)
	}
	if _, ok := record["token"]; ok {
		t.Error("token must be cleared after logout")
	}

	// Logging out again is a quiet no-op
	if err := runLogout(api.URL, false); err != nil {
		t.Fatalf("second runLogout() error = %v", err)
	}
}

func TestResolveRoleFlag(t *testing.T) {
	if _, err := resolveRole("admin"); err == nil {
		t.Fatal("invalid role must be rejected")
	}
	role, err := resolveRole("employer")
	if err != nil {
		t.Fatalf("resolveRole() error = %v", err)
	}
	if role.Home() != "/employer/home" {
		t.Errorf("home = %q", role.Home())
	}
}
