package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gitlab.com/signcall-2025.net/internal/adapter/crypto"
	"gitlab.com/signcall-2025.net/internal/adapter/postgres/sessionrepository"
	"gitlab.com/signcall-2025.net/internal/adapter/redis/presenceport"
	"gitlab.com/signcall-2025.net/internal/config"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/core/services/auth"
	"gitlab.com/signcall-2025.net/internal/core/services/caption"
	"gitlab.com/signcall-2025.net/internal/core/services/feature"
	"gitlab.com/signcall-2025.net/internal/core/services/hub"
	"gitlab.com/signcall-2025.net/internal/core/services/roomlog"
	logger2 "gitlab.com/signcall-2025.net/internal/global/logger"
	http2 "gitlab.com/signcall-2025.net/internal/http"
	"gitlab.com/signcall-2025.net/internal/presenceengine"
	"gitlab.com/signcall-2025.net/internal/ws"

	"gitlab.com/signcall-2025.net/internal/adapter/model"
)

func main() {
	InitReader()
	// Set up graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	logger2.Info("Starting inference routing hub")

	logger := logger2.Logger

	sysCfg := config.NewSystemConfig()

	// Infrastructure is best-effort: the hub keeps routing with no
	// database, no redis and no model.
	db, err := setupDatabase(sysCfg.PostgresConfig)
	if err != nil {
		logger.Warn("Database unavailable, room history disabled", "error", err)
		db = nil
	}

	redisClient, err := setupRedis(sysCfg.RedisConfig)
	if err != nil {
		logger.Warn("Redis unavailable, worker registry disabled", "error", err)
		redisClient = nil
	}

	// SECONDARY PORTS
	var presencePort secondary.PresenceRepository
	if redisClient != nil {
		presencePort = presenceport.NewPresenceRepository(redisClient, logger)
	}
	var sessionPort secondary.SessionRepository
	if db != nil {
		sessionPort = sessionrepository.NewSessionRepository(db, logger)
	}

	var classifier secondary.Classifier
	loaded, err := model.Load(sysCfg.ModelConfig.Path, logger)
	if err != nil {
		logger.Warn("Model unavailable, captioning disabled", "path", sysCfg.ModelConfig.Path, "error", err)
	} else {
		classifier = loaded
	}

	// PRIMARY PORTS
	jwtProvider := crypto.NewJWTService(sysCfg.JwtConfig)

	// SERVICES
	hubSvc := hub.NewHubService(logger)
	extractor := feature.NewExtractor(classifier, logger)
	captionSvc := caption.NewCaptionService(classifier, extractor, sysCfg.ModelConfig, sysCfg.HubConfig, logger)
	authSvc := auth.NewConnectAuthService(jwtProvider, sysCfg.JwtConfig, logger)
	roomLogSvc := roomlog.NewRoomLogService(sessionPort, logger)

	serviceProvider := http2.NewServiceProvider(captionSvc, presencePort, sessionPort, sysCfg.JwtConfig.Secret)

	// SERVERS
	wsServer := ws.NewWSServer(hubSvc, authSvc, captionSvc, roomLogSvc, presencePort, logger,
		ws.WithAddress(sysCfg.HubConfig.WsAddress))
	httpServer := http2.NewServer(8082, "inferenceHub", *serviceProvider, logger)
	if err := httpServer.Init(); err != nil {
		panic(err)
	}

	ctxBg := context.Background()
	engineCtx, stopEngines := context.WithCancel(ctxBg)

	httpServer.Start(ctxBg)
	if err := wsServer.Start(); err != nil {
		panic(err)
	}
	if presencePort != nil {
		presenceengine.NewPresenceEngine(sysCfg.PresenceSvcCfg, presencePort, logger).
			StartSweepEngine(engineCtx)
	}

	<-quit
	logger.Info("Shutting down server...")
	stopEngines()

	ctx, cancel := context.WithTimeout(ctxBg, 5*time.Second)
	defer cancel()
	wsServer.Stop(ctx)
	httpServer.Stop(ctx)

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("successfully shutdown server")
}

// setupDatabase sets up the PostgreSQL connection
func setupDatabase(cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, err
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}

// setupRedis sets up the Redis connection
func setupRedis(cfg *config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Url,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return client, nil
}

func InitReader() {
	environment := ""
	if len(os.Args) < 2 {
		log.Fatalf("Env not supplied in argument")
	} else {
		environment = os.Args[1]
	}

	err := godotenv.Load(environment + ".env")
	if err != nil {
		log.Fatalf("Error loading %s.env file", environment)
	}
}
