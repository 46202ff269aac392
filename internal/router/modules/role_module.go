package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
)

// RoleModule: GET /api/role, PUT /api/role
type RoleModule struct {
	Handler *handlers.RoleHandler
	Auth    AuthChain
}

func NewRoleModule(h *handlers.RoleHandler, auth AuthChain) *RoleModule {
	return &RoleModule{Handler: h, Auth: auth}
}

func (m *RoleModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/role", m.Auth.Authenticated()...)
	g.GET("", m.Handler.Get)
	g.PUT("", m.Handler.Set)
}
