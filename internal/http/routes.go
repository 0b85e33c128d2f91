package http

import (
	"velociti_backend/internal/config"
	"velociti_backend/internal/http/handlers"
	"velociti_backend/internal/http/middleware"
	"velociti_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

func RegisterRoutes(r *gin.Engine, db *pgxpool.Pool, cfg *config.Config, hub *ws.Hub, version string) {
	h := handlers.NewHandler(db, handlers.HandlerConfig{
		CardAllocAttempts: cfg.CardAllocAttempts,
	})
	healthHandler := handlers.NewHealthHandler(db, version)

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow))

	wallet := v1.Group("/wallet")
	wallet.Use(middleware.JWT())
	{
		wallet.GET("", h.Wallet)
		wallet.GET("/transactions", h.Transactions)
		wallet.POST("/transfer", h.Transfer)
	}

	v1.GET("/stations", h.Stations)

	// Live push namespaces; the credential travels as a query parameter
	// because browsers cannot set headers on websocket handshakes.
	r.GET("/ws/notifications", handlers.WS(hub, ws.NamespaceNotifications))
	r.GET("/ws/rfid", handlers.WS(hub, ws.NamespaceRfid))
}
