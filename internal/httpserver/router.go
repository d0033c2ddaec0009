package httpserver

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"mail-dispatch-service/internal/config"
	"mail-dispatch-service/internal/handler"
	"mail-dispatch-service/pkg/mq"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	dispatchHandler *handler.DispatchHandler,
	webhookHandler *handler.WebhookHandler,
	cfg *config.Config,
	db *pgxpool.Pool,
	rdb *redis.Client,
	publisher *mq.Publisher,
) *Router {
	r := gin.Default()
	// Webhook contract requires 405 for non-POST methods.
	r.HandleMethodNotAllowed = true

	r.Use(TraceMiddleware())

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if db != nil {
			if err := db.Ping(ctx); err != nil {
				c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
				return
			}
		}

		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}

		if publisher != nil && !publisher.IsConnected() {
			c.JSON(500, gin.H{"status": "mq_not_ready"})
			return
		}

		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Provider callbacks are unauthenticated; bad events are dropped inside.
	r.POST("/webhook/events", webhookHandler.HandleEvents)

	// Dispatch requires an authenticated sender on an allowed domain.
	auth := r.Group("/")
	auth.Use(AuthMiddleware(cfg.JWT.Secret))
	auth.Use(RequireSenderDomain(cfg.Auth.AllowedDomains))
	{
		auth.POST("/email/dispatch", dispatchHandler.Dispatch)
	}

	return &Router{Engine: r}
}
