package commands

import (
	"fmt"
	"os"
	"syscall"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"

	"github.com/kazilink-dev/kazilink/internal/client"
	"github.com/kazilink-dev/kazilink/internal/models"
	"github.com/kazilink-dev/kazilink/internal/session"
)

const defaultServerURL = "http://localhost:8080"

// serverURL resolves the API base URL (flag beats env beats default)
func serverURL(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv("KAZILINK_SERVER"); v != "" {
		return v
	}
	return defaultServerURL
}

// newStorage picks the durable session storage backend. The keyring backend
// keeps the record in the OS credential manager; the default is a JSON file
// in the user config directory.
func newStorage() (session.Storage, error) {
	if os.Getenv("KAZILINK_SESSION_BACKEND") == "keyring" {
		return session.KeyringStorage{}, nil
	}
	return session.NewFileStorage()
}

// newAuthenticator picks the credential exchange: the API client by default,
// the offline simulation when --offline is set
func newAuthenticator(server string, offline bool) session.Authenticator {
	if offline {
		return session.OfflineAuthenticator{}
	}
	return client.New(serverURL(server))
}

// restoreSession builds the session store and restores any persisted session
func restoreSession(server string, offline bool) (*session.Store, error) {
	storage, err := newStorage()
	if err != nil {
		return nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	store := session.NewStore(storage, newAuthenticator(server, offline))
	store.Restore()
	return store, nil
}

// promptRole asks the user to pick a role interactively
func promptRole() (models.Role, error) {
	prompt := promptui.Select{
		Label: "I want to",
		Items: []string{"hire talent (employer)", "find work (freelancer)"},
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("role selection cancelled: %w", err)
	}

	if idx == 0 {
		return models.RoleEmployer, nil
	}
	return models.RoleFreelancer, nil
}

// resolveRole parses the role flag, falling back to an interactive prompt
func resolveRole(roleFlag string) (models.Role, error) {
	if roleFlag != "" {
		role := models.Role(roleFlag)
		if !role.Valid() {
			return "", fmt.Errorf("invalid role %q (use employer or freelancer)", roleFlag)
		}
		return role, nil
	}
	return promptRole()
}

// promptPassword reads a password without echoing. Non-interactive callers
// must pass the password via flag or KAZILINK_PASSWORD.
func promptPassword() (string, error) {
	if !term.IsTerminal(int(syscall.Stdin)) {
		return "", fmt.Errorf("password is required in non-interactive mode (use --password or KAZILINK_PASSWORD)")
	}

	fmt.Print("Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	fmt.Println() // New line after password input
	return string(bytePassword), nil
}

// resolvePassword checks flag, then env, then prompts
func resolvePassword(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if v := os.Getenv("KAZILINK_PASSWORD"); v != "" {
		return v, nil
	}
	return promptPassword()
}
