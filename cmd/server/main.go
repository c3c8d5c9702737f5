package main

import (
	"flag"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/tadeyemo32/strategai-backend/api"
	"github.com/tadeyemo32/strategai-backend/config"
	"github.com/tadeyemo32/strategai-backend/logger"
	"github.com/tadeyemo32/strategai-backend/services"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "optional YAML config file")
	flag.Parse()

	// Load environment variables
	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Log.Fatalf("Error loading config: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("Error opening log file: %v", err)
	}
	if cfg.LLM.APIKey == "" {
		logger.Log.Warn("AI_API_KEY is not set; report generation will fail until it is")
	}

	db, err := services.OpenDB(cfg.DB)
	if err != nil {
		logger.Log.Fatalf("Error opening database: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	store := services.NewReportStore(db)

	var opts []services.ResearchOption
	if cfg.Enrich.Website {
		opts = append(opts, services.WithEnricher(services.NewSiteEnricher(
			time.Duration(cfg.Enrich.TimeoutSeconds)*time.Second,
			time.Duration(cfg.Enrich.CacheTTLHours)*time.Hour,
		)))
	}
	research := services.NewResearchService(services.NewModelClient(cfg.LLM), store, opts...)

	server := api.NewServer(research, store, services.NewSessionResolver(cfg.Auth), cfg.Server.AllowedOrigins)

	if cfg.Auth.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(api.RequestLogger(), gin.Recovery())
	api.SetupRoutes(r, server)

	logger.Log.Infof("Starting research backend on port %s (model %s)", cfg.Server.Port, cfg.LLM.Model)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Log.Fatalf("Error starting server: %v", err)
	}
}
