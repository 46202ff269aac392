// Command maintenance runs operator tasks against the document store:
// referential repair and privileged role assignment.
package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/config"
	"github.com/oksasatya/delivery-marketplace/internal/application"
	"github.com/oksasatya/delivery-marketplace/internal/container"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/internal/infrastructure/search"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	os.Exit(execute(os.Args[1:], &env{out: os.Stdout, errOut: os.Stderr, open: openFromConfig}))
}

// openFromConfig connects to the configured store without running migrations.
func openFromConfig(ctx context.Context) (*backend, error) {
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-maintenance", cfg.Env, cfg.LogLevel)
	logger.SetOutput(os.Stderr)

	store, closeStore, err := container.OpenStore(ctx, cfg, logger, false)
	if err != nil {
		return nil, err
	}
	b := &backend{
		cols:   repository.NewCollections(store),
		logger: logger,
		close:  closeStore,
	}
	if cfg.SearchEnabled {
		es, err := helpers.NewESClient(cfg.ESAddrs(), cfg.ElasticsearchUser, cfg.ElasticsearchPass)
		if err != nil {
			closeStore()
			return nil, err
		}
		b.index = search.NewProductIndex(es, cfg.ESProductsIndex)
	}
	b.adminEmails = cfg.AdminEmailList()
	return b, nil
}

// backend is what a subcommand needs from the environment.
type backend struct {
	cols        *repository.Collections
	index       application.ProductIndex
	logger      *logrus.Logger
	adminEmails []string
	close       func()
}
