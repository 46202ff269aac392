package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/delivery-marketplace/config"
	"github.com/oksasatya/delivery-marketplace/internal/domain/repository"
	"github.com/oksasatya/delivery-marketplace/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons. Optional backends are
// left nil when disabled.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	docStore    repository.DocumentStore
	redisClient *redis.Client
	gcsClient   *storage.Client

	jwtManager *helpers.JWTManager
	webhooks   *helpers.WebhookVerifier

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config)                   { cfg = c }
func GetConfig() *config.Config                    { return cfg }
func SetLogger(l *logrus.Logger)                   { logger = l }
func GetLogger() *logrus.Logger                    { return logger }
func SetPGPool(p *pgxpool.Pool)                    { pgPool = p }
func GetPGPool() *pgxpool.Pool                     { return pgPool }
func SetStore(s repository.DocumentStore)          { docStore = s }
func GetStore() repository.DocumentStore           { return docStore }
func SetRedis(r *redis.Client)                     { redisClient = r }
func GetRedis() *redis.Client                      { return redisClient }
func SetGCS(s *storage.Client)                     { gcsClient = s }
func GetGCS() *storage.Client                      { return gcsClient }
func SetJWT(m *helpers.JWTManager)                 { jwtManager = m }
func GetJWT() *helpers.JWTManager                  { return jwtManager }
func SetWebhookVerifier(v *helpers.WebhookVerifier) { webhooks = v }
func GetWebhookVerifier() *helpers.WebhookVerifier { return webhooks }

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
