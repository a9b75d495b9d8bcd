package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/quizhub/quiz-service/internal/config"
	"github.com/quizhub/quiz-service/internal/models"
	"github.com/quizhub/quiz-service/internal/repositories"
	"github.com/quizhub/quiz-service/internal/utils"
)

const (
	// ContextUserKey is the gin context key carrying the authenticated user.
	ContextUserKey = "current_user"
)

// InitCasdoor configures the shared Casdoor SDK client from service config.
func InitCasdoor(cfg *config.Config) {
	casdoorsdk.InitConfig(
		cfg.CasdoorEndpoint,
		cfg.CasdoorClientID,
		cfg.CasdoorClientSecret,
		cfg.CasdoorCertificate,
		cfg.CasdoorOrganization,
		cfg.CasdoorApplication,
	)
}

// Auth validates the bearer token against Casdoor and resolves the local
// user row, creating it on first sight. Identity lives in Casdoor; this
// service only keeps the projection it needs for foreign keys and display.
func Auth(repo repositories.Repository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.WarnContext(c.Request.Context(), "Token validation failed", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		user, err := resolveUser(c, repo, &claims.User)
		if err != nil {
			logger.ErrorContext(c.Request.Context(), "Failed to resolve user", "external_id", claims.User.Id, "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve user"})
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth resolves the user when a valid bearer token is present and
// continues anonymously otherwise. Public catalog routes use this so
// authenticated callers still get their per-quiz attempt status.
func OptionalAuth(repo repositories.Repository, logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			c.Next()
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			c.Next()
			return
		}

		if user, err := resolveUser(c, repo, &claims.User); err == nil {
			c.Set(ContextUserKey, user)
		} else {
			logger.WarnContext(c.Request.Context(), "Failed to resolve user for optional auth", "error", err)
		}
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers. Must run after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		c.Next()
	}
}

// CurrentUser extracts the authenticated user set by Auth.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func resolveUser(c *gin.Context, repo repositories.Repository, identity *casdoorsdk.User) (*models.User, error) {
	ctx := c.Request.Context()

	user, err := repo.User().GetByExternalID(ctx, identity.Id)
	if err == nil {
		return user, nil
	}
	if !repositories.IsNotFoundError(err) {
		return nil, err
	}

	role := models.RoleUser
	if identity.IsAdmin {
		role = models.RoleAdmin
	}
	user = &models.User{
		ExternalID: identity.Id,
		Name:       identity.DisplayName,
		Email:      identity.Email,
		Role:       role,
	}
	if user.Name == "" {
		user.Name = identity.Name
	}

	if err := repo.User().Create(ctx, user); err != nil {
		// Lost a race with a concurrent first request for the same user.
		if repositories.IsDuplicateError(err) {
			return repo.User().GetByExternalID(ctx, identity.Id)
		}
		return nil, err
	}
	return user, nil
}
