package router

import (
	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/container"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/internal/infrastructure/gcs"
	"github.com/oksasatya/delivery-marketplace/internal/infrastructure/search"
	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
	"github.com/oksasatya/delivery-marketplace/internal/router/modules"
)

// Services groups the application layer built from the container.
type Services struct {
	Identity *application.IdentityService
	Roles    *application.RoleService
	Stores   *application.StoreService
	Products *application.ProductService
	Orders   *application.OrderService
	Repairer *application.Repairer
}

// productIndex returns nil (not a typed nil) when search is disabled.
func productIndex() application.ProductIndex {
	es := container.GetES()
	if es == nil {
		return nil
	}
	cfg := container.GetConfig()
	idx := search.NewProductIndex(es, cfg.ESProductsIndex)
	if rdb := container.GetRedis(); rdb != nil && cfg.SearchCacheTTL > 0 {
		return search.NewCachedIndex(idx, rdb, cfg.SearchCacheTTL, container.GetLogger())
	}
	return idx
}

func imageStorage() application.ImageStorage {
	cfg := container.GetConfig()
	if container.GetGCS() == nil || cfg.GCSBucket == "" {
		return nil
	}
	return gcs.NewImageStorage(container.GetGCS(), cfg.GCSBucket)
}

func publisher() application.Publisher {
	if p := container.GetRabbitPub(); p != nil {
		return p
	}
	return nil
}

func BuildServices() *Services {
	cols := repository.NewCollections(container.GetStore())
	logger := container.GetLogger()
	index := productIndex()

	identity := application.NewIdentityService(cols, container.GetConfig().AdminEmailList(), logger)
	return &Services{
		Identity: identity,
		Roles:    application.NewRoleService(identity, cols, logger),
		Stores:   application.NewStoreService(cols, index, logger),
		Products: application.NewProductService(cols, index, imageStorage(), logger),
		Orders:   application.NewOrderService(cols, publisher(), logger),
		Repairer: application.NewRepairer(cols, index, logger),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	svc := BuildServices()
	logger := container.GetLogger()
	auth := modules.AuthChain{
		JWT:      container.GetJWT(),
		Identity: svc.Identity,
		Redis:    container.GetRedis(),
		Logger:   logger,
	}

	if v := container.GetWebhookVerifier(); v != nil {
		r.Add(modules.NewWebhookModule(handlers.NewWebhookHandler(svc.Identity, logger), v, container.GetRedis(), logger))
	}
	r.Add(modules.NewRoleModule(handlers.NewRoleHandler(svc.Roles, logger), auth))
	r.Add(modules.NewStoreModule(
		handlers.NewStoreHandler(svc.Stores, logger),
		handlers.NewProductHandler(svc.Products, logger),
		handlers.NewOrderHandler(svc.Orders, logger),
		auth,
	))
	r.Add(modules.NewOrderModule(handlers.NewOrderHandler(svc.Orders, logger), auth))
	r.Add(modules.NewMaintenanceModule(handlers.NewMaintenanceHandler(svc.Repairer, logger), auth))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule(container.GetRedis()))
	}
}
