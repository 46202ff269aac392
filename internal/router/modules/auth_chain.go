package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/domain/entity"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

// AuthChain builds the middleware stack shared by authenticated modules.
type AuthChain struct {
	JWT      *helpers.JWTManager
	Identity *application.IdentityService
	Redis    *redis.Client
	Logger   *logrus.Logger
}

// Authenticated verifies the bearer token, rate limits per IP and identity,
// and loads the local user.
func (a AuthChain) Authenticated() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.Auth(a.JWT),
		middleware.RateLimit(a.Redis, 300, time.Minute, middleware.KeyByIP(), nil),
		middleware.RateLimit(a.Redis, 120, time.Minute, middleware.KeyByUserID(), nil),
		middleware.LoadUser(a.Identity, a.Logger),
	}
}

// Managers admits onboarded store owners and admins.
func (a AuthChain) Managers() gin.HandlerFunc {
	return middleware.RequireRole(entity.RoleOwner, entity.RoleAdmin)
}

func (a AuthChain) Admins() gin.HandlerFunc {
	return middleware.RequireRole(entity.RoleAdmin)
}
