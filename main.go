package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"floorplan-studio/internal/config"
	"floorplan-studio/internal/controller"
	"floorplan-studio/internal/handlers"
	"floorplan-studio/internal/logger"
	"floorplan-studio/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration: ", err)
	}

	logger.Init(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := services.NewBackendClient(cfg.BackendURL, &http.Client{})
	studio := controller.New(backend, controller.Options{
		Intake:         services.NewIntake(cfg.Intake.MaxFileSize),
		Previewer:      services.NewPreviewRenderer(cfg.Intake.PreviewSize),
		Sanitizer:      services.NewTextSanitizer(),
		RequestTimeout: cfg.RequestTimeout,
		HistoryLimit:   cfg.History.Limit,
	})

	var store handlers.ResultStore = services.NewResultWriter(cfg.Results.OutputDir)
	if cfg.Results.Bucket != "" {
		store = services.NewBucketWriter(services.BucketConfig{
			Bucket:          cfg.Results.Bucket,
			Prefix:          cfg.Results.Prefix,
			Endpoint:        cfg.Results.Endpoint,
			Region:          cfg.Results.Region,
			AccessKeyID:     cfg.Results.AccessKeyID,
			SecretAccessKey: cfg.Results.SecretAccessKey,
		})
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/health", handlers.Health(cfg.BackendURL))

	uiHandler := handlers.NewUIHandler(ctx, studio, store, cfg.Intake.MaxFileSize)
	router.GET("/ws", uiHandler.Stream)
	uiHandler.Register(router.Group("/api"))

	// History is loaded once when the page comes up.
	studio.StartHistoryRefresh(ctx)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"port":    cfg.Port,
			"backend": cfg.BackendURL,
		}).Info("🚀 Studio listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{
			"error": err.Error(),
		}).Error("Forced shutdown")
	}
	studio.Wait()
}
