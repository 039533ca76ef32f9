package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"github.com/vetdesk/clinic-api/internal/model"
	"github.com/vetdesk/clinic-api/internal/rbac"
	"github.com/vetdesk/clinic-api/internal/repository"
	authService "github.com/vetdesk/clinic-api/internal/service/auth"
)

const ContextActor = "actor"

type AuthMiddleware struct {
	authSvc  *authService.Service
	userRepo repository.UserRepository
	// users caches user status lookups so every request doesn't hit
	// postgres just to confirm the account is still active.
	users *cache.Cache
}

func NewAuthMiddleware(authSvc *authService.Service, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		authSvc:  authSvc,
		userRepo: userRepo,
		users:    cache.New(5*time.Minute, 10*time.Minute),
	}
}

// Authenticate verifies the bearer token and sets the acting user in the
// context. The role comes from the token and is immutable for its
// lifetime.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "missing authorization header",
			})
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid authorization format",
			})
			return
		}

		claims, err := m.authSvc.ValidateToken(c.Request.Context(), parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "invalid token",
			})
			return
		}

		if !m.userActive(c, claims) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "account inactive",
			})
			return
		}

		c.Set(ContextActor, model.Actor{
			UserID:    claims.UserID,
			Role:      claims.Role,
			SessionID: claims.SessionID,
		})
		c.Next()
	}
}

// RequireCapability rejects callers whose role lacks the capability before
// the handler runs. Handlers still re-check in the service layer; this
// keeps obvious denials cheap.
func (m *AuthMiddleware) RequireCapability(cap rbac.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{
				Code:    http.StatusUnauthorized,
				Message: "unauthenticated",
			})
			return
		}

		if !rbac.Can(actor.Role, cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{
				Code:    http.StatusForbidden,
				Message: "permission denied",
			})
			return
		}

		c.Next()
	}
}

// Actor extracts the authenticated actor from the gin context.
func Actor(c *gin.Context) (model.Actor, bool) {
	v, ok := c.Get(ContextActor)
	if !ok {
		return model.Actor{}, false
	}
	actor, ok := v.(model.Actor)
	return actor, ok
}

func (m *AuthMiddleware) userActive(c *gin.Context, claims *model.TokenClaims) bool {
	key := claims.UserID.String()
	if status, found := m.users.Get(key); found {
		return status.(string) == model.UserStatusActive
	}

	user, err := m.userRepo.Get(c.Request.Context(), claims.UserID)
	if err != nil {
		return false
	}

	m.users.Set(key, user.Status, cache.DefaultExpiration)
	return user.Status == model.UserStatusActive
}
