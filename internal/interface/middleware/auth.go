package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
	"github.com/oksasatya/delivery-marketplace/pkg/response"
)

// Context keys set by the auth chain.
const (
	CtxUserIDKey   = "userID"
	CtxProfileKey  = "identity"
	CtxUserKey     = "user"
	bearerPrefix   = "bearer "
	authHeaderName = "Authorization"
)

// Auth validates the identity-provider bearer token and stores the caller's
// profile and id in the Gin context.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader(authHeaderName)
		if len(h) <= len(bearerPrefix) || !strings.EqualFold(h[:len(bearerPrefix)], bearerPrefix) {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token", nil)
			return
		}
		claims, err := jwt.Parse(strings.TrimSpace(h[len(bearerPrefix):]))
		if err != nil {
			response.Abort(c, http.StatusUnauthorized, "invalid bearer token", err.Error())
			return
		}
		c.Set(CtxUserIDKey, claims.Subject)
		c.Set(CtxProfileKey, entity.Profile{
			ID:       claims.Subject,
			Email:    claims.Email,
			Name:     claims.Name,
			ImageURL: claims.Picture,
		})
		c.Next()
	}
}

// LoadUser resolves the local user for the authenticated identity, creating
// it on first use. Must run after Auth.
func LoadUser(identity *application.IdentityService, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := identity.GetOrCreate(c.Request.Context(), CurrentProfile(c))
		if err != nil {
			if logger != nil {
				logger.WithError(err).WithField("request_id", c.GetString(response.RequestIDKey)).Error("load user failed")
			}
			status, msg := StatusFor(err)
			response.Abort(c, status, msg, nil)
			return
		}
		c.Set(CtxUserKey, u)
		c.Next()
	}
}

// RequireRole admits onboarded callers holding one of roles. Must run after LoadUser.
func RequireRole(roles ...entity.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		u := CurrentUser(c)
		if u == nil || !u.Onboarded || !slices.Contains(roles, u.Role) {
			response.Abort(c, http.StatusForbidden, "insufficient role", nil)
			return
		}
		c.Next()
	}
}

func CurrentProfile(c *gin.Context) entity.Profile {
	if v, ok := c.Get(CtxProfileKey); ok {
		if p, ok := v.(entity.Profile); ok {
			return p
		}
	}
	return entity.Profile{}
}

func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
