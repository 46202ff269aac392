package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
)

// MaintenanceModule: POST /api/admin/repair?apply=, admins only.
type MaintenanceModule struct {
	Handler *handlers.MaintenanceHandler
	Auth    AuthChain
}

func NewMaintenanceModule(h *handlers.MaintenanceHandler, auth AuthChain) *MaintenanceModule {
	return &MaintenanceModule{Handler: h, Auth: auth}
}

func (m *MaintenanceModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/admin", m.Auth.Authenticated()...)
	g.Use(m.Auth.Admins())
	g.POST("/repair", middleware.RateLimit(m.Auth.Redis, 6, time.Minute, middleware.KeyByUserID(), nil), m.Handler.Repair)
}
