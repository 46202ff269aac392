package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
)

// StoreModule wires stores and their products.
// Authenticated: GET /stores/:id/products, GET /products/search
// Owner/admin: store and product mutations, GET /stores/mine, GET /stores/:id/orders
// Admin: PATCH /admin/stores/:id/approval
type StoreModule struct {
	Stores   *handlers.StoreHandler
	Products *handlers.ProductHandler
	Orders   *handlers.OrderHandler
	Auth     AuthChain
}

func NewStoreModule(s *handlers.StoreHandler, p *handlers.ProductHandler, o *handlers.OrderHandler, auth AuthChain) *StoreModule {
	return &StoreModule{Stores: s, Products: p, Orders: o, Auth: auth}
}

func (m *StoreModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/", m.Auth.Authenticated()...)
	auth.GET("/stores/:id/products", m.Products.ListByStore)
	auth.GET("/products/search", m.Products.Search)

	managers := auth.Group("/", m.Auth.Managers())
	{
		managers.POST("/stores", m.Stores.Create)
		managers.GET("/stores/mine", m.Stores.ListMine)
		managers.DELETE("/stores/:id", m.Stores.Delete)
		managers.GET("/stores/:id/orders", m.Orders.ListByStore)
		managers.POST("/stores/:id/products", m.Products.Create)
		managers.DELETE("/products/:id", m.Products.Delete)
		managers.POST("/products/:id/image", m.Products.UploadImage)
	}

	admins := auth.Group("/admin", m.Auth.Admins())
	admins.PATCH("/stores/:id/approval", m.Stores.SetApproval)
}
