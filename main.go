package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kit2552/tadka-cms-final-sub001/internal/config"
	"github.com/kit2552/tadka-cms-final-sub001/internal/handlers"
	"github.com/kit2552/tadka-cms-final-sub001/internal/pkg/logger"
	"github.com/kit2552/tadka-cms-final-sub001/internal/services"
	"github.com/kit2552/tadka-cms-final-sub001/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Format:   cfg.Log.Format,
		Output:   cfg.Log.Output,
		FilePath: cfg.Log.FilePath,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	catalog, err := config.LoadAgentCatalog(cfg.AgentCatalogPath)
	if err != nil {
		appLogger.WithError(err).Error("Failed to load agent catalog")
		os.Exit(1)
	}

	contentStore, err := store.NewRedisStore(cfg.Redis, appLogger)
	if err != nil {
		appLogger.WithError(err).Error("Failed to connect to content store")
		os.Exit(1)
	}
	defer contentStore.Close()

	dedupService := services.NewDedupService(contentStore, appLogger)
	groupService := services.NewGroupService(contentStore, appLogger)
	registry := services.NewRunRegistry()
	adapters := services.AdapterSet{
		Feed:    services.NewFeedAdapter(cfg.Scraper, appLogger),
		Channel: services.NewChannelAdapter(cfg.Scraper, appLogger),
		Listing: services.NewListingAdapter(cfg.Scraper, appLogger),
	}
	dispatcher := services.NewDispatcher(catalog, registry, contentStore, dedupService, groupService, adapters, appLogger)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	agentHandler := handlers.NewAgentHandler(dispatcher, appLogger)
	groupHandler := handlers.NewGroupHandler(groupService, appLogger)
	handlers.RegisterRoutes(router, agentHandler, groupHandler, func(c *gin.Context) {
		if err := contentStore.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "active_runs": dispatcher.ActiveRunsCount()})
	})

	server := &http.Server{
		Addr:         ":" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		appLogger.Info("HTTP server listening", "port", cfg.HTTP.Port, "agents", catalog.Len())
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("HTTP server failed")
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Graceful shutdown failed")
	}
}
