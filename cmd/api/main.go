package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sim-talenta-gtk-api/config"
	"sim-talenta-gtk-api/controllers"
	"sim-talenta-gtk-api/middleware"
	"sim-talenta-gtk-api/routes"
	"sim-talenta-gtk-api/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Logger().WithError(err).Fatal("Failed to load configuration")
	}

	logFile, logWriter := config.InitLogging(cfg, os.Stdout)
	if logFile != nil {
		defer logFile.Close()
	}
	log := config.Logger()

	if err := config.InitDB(cfg); err != nil {
		log.WithError(err).Fatal("Failed to connect database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialise upload storage")
	}
	controllers.SetObjectStore(store)

	if err := os.MkdirAll(cfg.UploadPath, os.ModePerm); err != nil {
		log.WithError(err).Warn("Failed to create upload directory")
	}

	if cfg.GinMode == gin.ReleaseMode || cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = logWriter
	gin.DefaultErrorWriter = logWriter

	router := gin.New()
	router.Use(middleware.RequestLogger(log))
	router.Use(gin.Recovery())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	routes.SetupRoutes(router)

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(map[string]interface{}{
			"port":        cfg.ServerPort,
			"environment": cfg.Environment,
			"minio":       cfg.Minio.Enabled(),
		}).Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	// Import streams can run long; give them time to finish their rows.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
}
