package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"velociti_backend/internal/config"
	"velociti_backend/internal/db"
	httpServer "velociti_backend/internal/http"
	"velociti_backend/internal/http/middleware"
	"velociti_backend/internal/logger"
	"velociti_backend/internal/rfid"
	"velociti_backend/internal/service"
	"velociti_backend/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const version = "1.2.0"

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_JSON") == "true")

	cfg := config.Load()
	service.InitJWT()

	dbPool := db.Connect(cfg.DatabaseURL)
	defer dbPool.Close()

	hub := ws.NewHub()

	trips := service.FixedTripLookup{
		Entry: service.Trip{StationID: cfg.EntryStationID, StationName: cfg.EntryStationName},
		Exit:  service.Trip{StationID: cfg.ExitStationID, StationName: cfg.ExitStationName, Fare: cfg.FareAmount},
	}
	fares := service.NewFareService(dbPool, trips, hub)

	readers := rfid.StaticReaderLookup{
		Readers: cfg.ReaderBindings,
		Default: cfg.DefaultScanUser,
	}

	var ingestor *rfid.Ingestor
	nc, err := rfid.Connect(cfg.NATSURL, func(_ *nats.Conn) {
		if ingestor != nil {
			ingestor.Rearm()
		}
	})
	if err != nil {
		logger.Fatal("failed to connect to scan broker", "error", err)
	}
	defer nc.Close()

	ingestor = rfid.NewIngestor(nc, cfg.ScanSubject, fares, readers)
	if err := ingestor.Start(); err != nil {
		logger.Fatal("failed to subscribe to scan feed", "error", err)
	}

	r := gin.Default()

	// CORS for production (frontend on a different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, dbPool, cfg, hub, version)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ingestor.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
