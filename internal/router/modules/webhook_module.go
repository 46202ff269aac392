package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/delivery-marketplace/internal/interface/http"
	"github.com/oksasatya/delivery-marketplace/internal/interface/middleware"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

// WebhookModule: POST /api/webhooks/identity, signature-verified.
type WebhookModule struct {
	Handler  *handlers.WebhookHandler
	Verifier *helpers.WebhookVerifier
	Redis    *redis.Client
	Logger   *logrus.Logger
}

func NewWebhookModule(h *handlers.WebhookHandler, v *helpers.WebhookVerifier, rdb *redis.Client, logger *logrus.Logger) *WebhookModule {
	return &WebhookModule{Handler: h, Verifier: v, Redis: rdb, Logger: logger}
}

func (m *WebhookModule) Register(rg *gin.RouterGroup) {
	rl := middleware.RateLimit(m.Redis, 600, time.Minute, middleware.KeyByIP(), nil)
	rg.POST("/webhooks/identity", rl, middleware.VerifyWebhook(m.Verifier, m.Logger), m.Handler.Receive)
}
