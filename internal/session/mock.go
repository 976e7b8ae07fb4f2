package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/kazilink-dev/kazilink/internal/models"
)

// OfflineAuthenticator simulates the credential exchange without a backend.
// Any non-empty credentials succeed and the claimed role is taken at face
// value. This is a stand-in for the API authenticator, not a security
// posture: nothing issued here is accepted by the server.
type OfflineAuthenticator struct{}

// Login builds a session from the given email and claimed role
func (OfflineAuthenticator) Login(ctx context.Context, email, password string, role models.Role) (User, string, error) {
	if email == "" || password == "" {
		return User{}, "", fmt.Errorf("email and password are required")
	}
	if !role.Valid() {
		return User{}, "", fmt.Errorf("unknown role %q", role)
	}

	user := User{
		ID:        uuid.NewString(),
		Email:     email,
		Role:      role,
		FirstName: "Demo",
		LastName:  "User",
	}
	return user, offlineToken(), nil
}

// Signup builds a session from the registration record
func (OfflineAuthenticator) Signup(ctx context.Context, data SignupData) (User, string, error) {
	if data.Email == "" || data.Password == "" {
		return User{}, "", fmt.Errorf("email and password are required")
	}
	if !data.Role.Valid() {
		return User{}, "", fmt.Errorf("unknown role %q", data.Role)
	}

	user := User{
		ID:        uuid.NewString(),
		Email:     data.Email,
		Role:      data.Role,
		FirstName: data.FirstName,
		LastName:  data.LastName,
	}
	return user, offlineToken(), nil
}

// offlineToken returns an opaque placeholder token. Its presence alone
// implies a valid session in the restore path.
func offlineToken() string {
	return "offline-" + uuid.NewString()
}
