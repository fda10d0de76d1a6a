package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"auction-engine/internal/identity"
	model "auction-engine/internal/models"
	"auction-engine/internal/repository"
	"auction-engine/services/auction/helpers"
	"auction-engine/utils"
)

// RequestLoggerMiddleware logs incoming requests with timing
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next() // process request

	utils.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}

// AuthRequired resolves the bearer token against the identity hub, syncs
// the user into the local store and attaches it to the request context.
func AuthRequired(gateway identity.Resolver, store repository.AuctionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.AbortJSONError(c, http.StatusUnauthorized, errors.New("no token provided"), "authentication required")
			return
		}

		user, err := resolveAndSync(c, gateway, store, token)
		if err != nil {
			status := http.StatusUnauthorized
			if !errors.Is(err, identity.ErrUnauthorized) {
				utils.Warn("identity hub lookup failed", map[string]any{"error": err.Error()})
			}
			utils.AbortJSONError(c, status, err, "authentication failed")
			return
		}

		c.Set(helpers.ContextUserKey, user)
		c.Next()
	}
}

// OptionalAuth attaches a user to the context when a valid credential is
// present and continues anonymously otherwise.
func OptionalAuth(gateway identity.Resolver, store repository.AuctionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token != "" {
			if user, err := resolveAndSync(c, gateway, store, token); err == nil {
				c.Set(helpers.ContextUserKey, user)
			}
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from non-administrators. Must run after
// AuthRequired.
func RequireAdmin(c *gin.Context) {
	user, ok := helpers.CurrentUser(c)
	if !ok {
		utils.AbortJSONError(c, http.StatusUnauthorized, errors.New("authentication required"), "authentication required")
		return
	}
	if !user.IsAdmin {
		utils.AbortJSONError(c, http.StatusForbidden, errors.New("admin privileges required"), "admin privileges required")
		return
	}
	c.Next()
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func resolveAndSync(c *gin.Context, gateway identity.Resolver, store repository.AuctionStore, token string) (user model.User, err error) {
	hubUser, err := gateway.Resolve(c.Request.Context(), token)
	if err != nil {
		return user, err
	}
	return store.UpsertUser(c.Request.Context(), hubUser.ToUser())
}
