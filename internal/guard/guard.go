// Package guard decides, for a navigation to a role-scoped path, whether the
// requested view may render or where the caller should be redirected instead.
// Decisions are pure functions of the session snapshot: the guard never
// mutates state, so it is evaluated on every navigation, not just at startup.
package guard

import "github.com/kazilink-dev/kazilink/internal/models"

// LoginPath is where unauthenticated navigation is redirected
const LoginPath = "/auth/login"

// State is the session lifecycle as observed by the guard
type State int

const (
	// StateUnknown means session restore has not completed yet.
	// Navigation is not decidable and must be deferred, never redirected.
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

// Session is the read-only session snapshot the guard evaluates
type Session struct {
	State State
	Role  models.Role // valid only when State == StateAuthenticated
}

// Action is the outcome kind of a guard decision
type Action int

const (
	// Defer means the session state is not yet known; render nothing yet
	Defer Action = iota
	// Allow means the requested view may render
	Allow
	// Redirect means navigation must go to Decision.To instead
	Redirect
)

// Decision is the guard's verdict for one navigation
type Decision struct {
	Action Action
	To     string // redirect target, set when Action == Redirect
	From   string // the originally requested path, recorded for return-after-login
}

// Evaluate gates a navigation to a path requiring the given role.
//
// Unauthenticated sessions are sent to the login view with the requested
// path recorded as the post-login return target. A session holding the
// wrong role is sent to its own role home rather than an error page.
func Evaluate(required models.Role, s Session, requestedPath string) Decision {
	switch s.State {
	case StateUnknown:
		return Decision{Action: Defer}
	case StateUnauthenticated:
		return Decision{Action: Redirect, To: LoginPath, From: requestedPath}
	}

	if s.Role != required {
		return Decision{Action: Redirect, To: s.Role.Home()}
	}

	return Decision{Action: Allow}
}

// ResolveHome resolves the generic /home entry point for a session:
// login view when signed out, the role's own home otherwise.
func ResolveHome(s Session) Decision {
	switch s.State {
	case StateUnknown:
		return Decision{Action: Defer}
	case StateAuthenticated:
		return Decision{Action: Redirect, To: s.Role.Home()}
	default:
		return Decision{Action: Redirect, To: LoginPath}
	}
}
