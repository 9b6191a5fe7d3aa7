package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ehotel/hotel-backend/internal/models"
	"github.com/ehotel/hotel-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SessionContextKey is the key used to store the caller's session in Gin context
const SessionContextKey = "session"

// UserContextKey is the key used to store the resolved user record in Gin context
const UserContextKey = "user"

// ErrExpiredToken is returned by verifiers when the token was valid but has expired
var ErrExpiredToken = errors.New("token expired")

// TokenVerifier checks a bearer token and returns the identity it vouches for
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*services.Identity, error)
}

// UserResolver maps a verified identity to the authoritative user record
type UserResolver interface {
	ResolveUser(ctx context.Context, identity services.Identity) (*models.User, error)
}

// AuthMiddleware verifies the bearer token, resolves the user record and
// stores the resulting session in the Gin context.
func AuthMiddleware(verifier TokenVerifier, resolver UserResolver, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.WithFields(logrus.Fields{
			"path": c.Request.URL.Path,
			"ip":   c.ClientIP(),
		})

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("Auth failed: missing authorization header")
			abort(c, http.StatusUnauthorized, "unauthorized", "Authorization header is required", "MISSING_AUTH_HEADER")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Debug("Auth failed: invalid authorization format")
			abort(c, http.StatusUnauthorized, "unauthorized", "Invalid authorization header format. Expected: Bearer <token>", "INVALID_AUTH_FORMAT")
			return
		}

		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			log.Debug("Auth failed: empty token")
			abort(c, http.StatusUnauthorized, "unauthorized", "Token cannot be empty", "INVALID_AUTH_FORMAT")
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), tokenString)
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				log.WithError(err).Info("Auth failed: token expired")
				abort(c, http.StatusUnauthorized, "token_expired", "Access token has expired", "TOKEN_EXPIRED")
			} else {
				log.WithError(err).Info("Auth failed: invalid token")
				abort(c, http.StatusUnauthorized, "invalid_token", "Invalid access token", "INVALID_TOKEN")
			}
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), *identity)
		if err != nil {
			if errors.Is(err, services.ErrAuthentication) {
				log.WithField("uid", identity.UID).Info("Auth failed: no user record for identity")
				abort(c, http.StatusUnauthorized, "unauthorized", "No account exists for this identity", "USER_NOT_FOUND")
				return
			}
			log.WithError(err).Error("Failed to resolve user")
			abort(c, http.StatusInternalServerError, "internal_error", "Failed to resolve user", "USER_LOOKUP_FAILED")
			return
		}

		c.Set(UserContextKey, user)
		c.Set(SessionContextKey, services.SessionFromUser(user))
		c.Next()
	}
}

// RequireRole creates a middleware that checks the session carries one of roles
func RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, exists := GetSession(c)
		if !exists {
			abort(c, http.StatusUnauthorized, "unauthorized", "User context not found. Auth middleware may not be applied.", "MISSING_USER_CONTEXT")
			return
		}

		for _, role := range roles {
			if session.Role == role {
				c.Next()
				return
			}
		}

		abort(c, http.StatusForbidden, "forbidden", "You don't have permission to access this resource", "INSUFFICIENT_PERMISSIONS")
	}
}

// RequireStaff is RequireRole(STAFF)
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleStaff)
}

// GetSession retrieves the caller's session from Gin context
func GetSession(c *gin.Context) (services.Session, bool) {
	value, exists := c.Get(SessionContextKey)
	if !exists {
		return services.Session{}, false
	}
	session, ok := value.(services.Session)
	return session, ok
}

// SessionOrAnonymous returns the caller's session or the anonymous zero session
func SessionOrAnonymous(c *gin.Context) services.Session {
	session, _ := GetSession(c)
	return session
}

// GetUser retrieves the resolved user record from Gin context
func GetUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(UserContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

func abort(c *gin.Context, status int, errCode, message, code string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error":   errCode,
		"message": message,
		"code":    code,
	})
}
