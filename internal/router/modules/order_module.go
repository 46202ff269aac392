package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
)

// OrderModule: order placement and lifecycle. Per-order authorization is
// decided by the order service, not by role middleware.
type OrderModule struct {
	Handler *handlers.OrderHandler
	Auth    AuthChain
}

func NewOrderModule(h *handlers.OrderHandler, auth AuthChain) *OrderModule {
	return &OrderModule{Handler: h, Auth: auth}
}

func (m *OrderModule) Register(rg *gin.RouterGroup) {
	g := rg.Group("/orders", m.Auth.Authenticated()...)
	g.POST("", m.Handler.Create)
	g.GET("", m.Handler.ListMine)
	g.GET("/:id", m.Handler.Get)
	g.PATCH("/:id", m.Handler.Update)
}
