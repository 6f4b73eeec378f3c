package main

import (
	"context"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"NutriGuide/middleware"
	"NutriGuide/models"
	"NutriGuide/pkg/chat"
	"NutriGuide/pkg/config"
	"NutriGuide/pkg/histcache"
	"NutriGuide/pkg/services"
	"NutriGuide/routes"
	"NutriGuide/store"
)

func main() {
	// config load happens in init of pkg/config

	logger := newLogger()
	defer logger.Sync()

	db, err := gorm.Open(sqlite.Open(config.DBPath), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect database", zap.Error(err))
	}
	if err := db.AutoMigrate(&models.User{}, &models.Conversation{}, &models.Message{}); err != nil {
		logger.Fatal("failed migrate", zap.Error(err))
	}

	// history cache is optional; without redis the store reads straight
	// from sqlite
	var hist *histcache.Cache
	if config.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		hist, err = histcache.New(ctx, config.RedisAddr, config.RedisPassword, config.RedisDB,
			time.Duration(config.HistoryCacheTTLSeconds)*time.Second)
		cancel()
		if err != nil {
			logger.Warn("redis unavailable, history cache disabled", zap.Error(err))
			hist = nil
		}
	}

	st := store.New(db, hist)
	gemini := services.NewGeminiService(logger)
	knowledge := services.NewKnowledgeService(gemini, logger)

	classifier, err := chat.LoadClassifier(config.KeywordsFile)
	if err != nil {
		logger.Warn("keyword file unavailable, using built-in classifier",
			zap.String("path", config.KeywordsFile), zap.Error(err))
		classifier = chat.DefaultClassifier()
	}
	orchestrator := chat.NewOrchestrator(st, gemini, knowledge, classifier, logger)

	middleware.SetRateLimitConfig(
		time.Duration(config.RateLimitWindowSeconds)*time.Second,
		config.RateLimitCapacity,
		config.UserConcurrencyLimit,
	)
	middleware.SetDuplicateTTL(time.Duration(config.DuplicateWindowSeconds) * time.Second)

	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://localhost:5173", "http://127.0.0.1:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, st, orchestrator, gemini, knowledge)

	logger.Info("listening", zap.String("port", config.Port))
	if err := r.Run(":" + config.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger() *zap.Logger {
	if config.AppEnv == "production" {
		l, err := zap.NewProduction()
		if err != nil {
			panic(err)
		}
		return l
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	return l
}
