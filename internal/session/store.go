// Package session owns the client-side authentication state: who is logged
// in, as what role, and the persisted record that makes the session survive
// restarts. It is the single writer of the durable session record.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kazilink-dev/kazilink/internal/guard"
	"github.com/kazilink-dev/kazilink/internal/models"
)

var (
	// ErrStorage means the durable session storage could not be read or written
	ErrStorage = errors.New("session storage failed")
	// ErrAuthFailed means login or signup could not complete
	ErrAuthFailed = errors.New("authentication failed")
)

// User is the session's view of the signed-in account
type User struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Role      models.Role `json:"role"`
	FirstName string      `json:"firstName,omitempty"`
	LastName  string      `json:"lastName,omitempty"`
}

// SignupData is the registration record accepted by Signup
type SignupData struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Role      models.Role
}

// Authenticator performs the credential exchange and returns the user record
// plus an opaque session token. Swapping the offline simulation for a real
// backend changes the implementation, not this interface.
type Authenticator interface {
	Login(ctx context.Context, email, password string, role models.Role) (User, string, error)
	Signup(ctx context.Context, data SignupData) (User, string, error)
}

// Store is the single source of truth for the current session. At most one
// session is tracked at a time; all mutations go through Login, Signup and
// Logout and are persisted before the in-memory state changes.
type Store struct {
	storage Storage
	authn   Authenticator

	loading       bool
	authenticated bool
	user          *User
	token         string
}

// NewStore creates a session store. The store reports Unknown state until
// Restore is called once at startup.
func NewStore(storage Storage, authn Authenticator) *Store {
	return &Store{
		storage: storage,
		authn:   authn,
		loading: true,
	}
}

// Restore reads the persisted session record, if any. Absence of stored
// data is a normal condition, not an error, and malformed data degrades to
// "no session" so a corrupted record never locks the user out of the login
// screen. After Restore returns, Loading reports false.
func (s *Store) Restore() {
	defer func() { s.loading = false }()

	token, haveToken, err := s.storage.Get(KeyToken)
	if err != nil || !haveToken {
		return
	}
	rawUser, haveUser, err := s.storage.Get(KeyUser)
	if err != nil || !haveUser {
		return
	}

	var user User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		return
	}
	if !user.Role.Valid() {
		return
	}

	s.token = token
	s.user = &user
	s.authenticated = true
}

// Login exchanges credentials for a session, persists it, and marks the
// session authenticated. The claimed role becomes the session's role.
func (s *Store) Login(ctx context.Context, email, password string, role models.Role) (User, error) {
	user, token, err := s.authn.Login(ctx, email, password, role)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if err := s.persist(user, token); err != nil {
		return User{}, err
	}
	return user, nil
}

// Signup registers a new account and starts its session
func (s *Store) Signup(ctx context.Context, data SignupData) (User, error) {
	user, token, err := s.authn.Signup(ctx, data)
	if err != nil {
		return User{}, fmt.Errorf("%w: %v", ErrAuthFailed, err)
	}
	if err := s.persist(user, token); err != nil {
		return User{}, err
	}
	return user, nil
}

func (s *Store) persist(user User, token string) error {
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.storage.Set(KeyToken, token); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.storage.Set(KeyUser, string(rawUser)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.token = token
	s.user = &user
	s.authenticated = true
	return nil
}

// Logout clears the persisted session record and resets state to
// unauthenticated. Logging out while already signed out is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	if err := s.storage.Delete(KeyToken); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	if err := s.storage.Delete(KeyUser); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	s.token = ""
	s.user = nil
	s.authenticated = false
	return nil
}

// Loading reports whether the initial Restore has not completed yet
func (s *Store) Loading() bool {
	return s.loading
}

// IsAuthenticated reports whether a user is signed in
func (s *Store) IsAuthenticated() bool {
	return s.authenticated
}

// CurrentUser returns the signed-in user, or nil
func (s *Store) CurrentUser() *User {
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Token returns the opaque session token, empty when signed out
func (s *Store) Token() string {
	return s.token
}

// Snapshot returns the session as the route guard observes it
func (s *Store) Snapshot() guard.Session {
	switch {
	case s.loading:
		return guard.Session{State: guard.StateUnknown}
	case s.authenticated && s.user != nil:
		return guard.Session{State: guard.StateAuthenticated, Role: s.user.Role}
	default:
		return guard.Session{State: guard.StateUnauthenticated}
	}
}
