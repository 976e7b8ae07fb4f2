package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/kazilink-dev/kazilink/internal/auth"
	"github.com/kazilink-dev/kazilink/internal/guard"
	"github.com/kazilink-dev/kazilink/internal/models"
)

const (
	bearerPrefix = "Bearer "
)

var (
	ErrMissingAuthHeader = errors.New("missing authorization header")
	ErrInvalidAuthFormat = errors.New("invalid authorization header format")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidToken      = errors.New("invalid token")
	ErrRevokedToken      = errors.New("revoked token")
	ErrUserNotFound      = errors.New("user not found")
)

func setSession(c *gin.Context, sessionData *auth.SessionData) {
	c.Set("session", sessionData)
}

func GetSessionData(c *gin.Context) (*auth.SessionData, bool) {
	session, exists := c.Get("session")
	if !exists {
		return nil, false
	}

	sessionData, ok := session.(*auth.SessionData)
	return sessionData, ok
}

func extractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingAuthHeader
	}

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return "", ErrInvalidAuthFormat
	}

	token := strings.TrimPrefix(authHeader, bearerPrefix)
	if token == "" {
		return "", ErrEmptyToken
	}

	return token, nil
}

// redirectToLogin rejects an unauthenticated request, pointing the client at
// the login view and recording the requested path as the post-login target
func redirectToLogin(c *gin.Context, log zerolog.Logger, err error) {
	log.Warn().Err(err).Str("path", c.Request.URL.Path).Msg("Unauthenticated request")
	c.Header("Location", guard.LoginPath)
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":    "Authentication required",
		"redirect": guard.LoginPath,
		"from":     c.Request.URL.Path,
	})
	c.Abort()
}

// JWTAuthMiddleware validates JWT tokens and rejects revoked ones
func JWTAuthMiddleware(db *gorm.DB, revoker *auth.Revoker, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Extract token from Authorization header
		authHeader := c.GetHeader("Authorization")
		token, err := extractBearerToken(authHeader)
		if err != nil {
			redirectToLogin(c, log, err)
			return
		}

		// Validate JWT token
		claims, err := auth.ValidateToken(token)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to validate JWT token")
			redirectToLogin(c, log, ErrInvalidToken)
			return
		}

		// Reject tokens revoked by logout
		revoked, err := revoker.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Error().Err(err).Msg("Failed to check token revocation")
		}
		if revoked {
			redirectToLogin(c, log, ErrRevokedToken)
			return
		}

		// Verify user exists in database
		var user models.User
		if err := db.Where("id = ?", claims.UserID).First(&user).Error; err != nil {
			log.Warn().Err(err).Str("user_id", claims.UserID).Msg("User not found")
			redirectToLogin(c, log, ErrUserNotFound)
			return
		}

		// Set session data
		sessionData := &auth.SessionData{
			UserID:  user.ID,
			Email:   user.Email,
			Role:    user.Role,
			TokenID: claims.ID,
		}
		setSession(c, sessionData)

		c.Next()
	}
}

// RequireRole gates a route group behind a role. A session holding the wrong
// role is redirected to its own role home, not shown an error page.
func RequireRole(required models.Role, log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess := guard.Session{State: guard.StateUnauthenticated}
		if sessionData, exists := GetSessionData(c); exists {
			sess = guard.Session{State: guard.StateAuthenticated, Role: sessionData.Role}
		}

		decision := guard.Evaluate(required, sess, c.Request.URL.Path)
		switch decision.Action {
		case guard.Allow:
			c.Next()
		case guard.Redirect:
			if decision.To == guard.LoginPath {
				redirectToLogin(c, log, errors.New("no session"))
				return
			}
			log.Info().
				Str("path", c.Request.URL.Path).
				Str("redirect", decision.To).
				Msg("Role mismatch, redirecting to own home")
			c.Header("Location", decision.To)
			c.JSON(http.StatusSeeOther, gin.H{"redirect": decision.To})
			c.Abort()
		default:
			// Unreachable on the server: session state is always known here
			c.AbortWithStatus(http.StatusServiceUnavailable)
		}
	}
}
