package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"

	"github.com/ViahIsGit/dksocial-sub000/internal/config"
	"github.com/ViahIsGit/dksocial-sub000/internal/db"
	"github.com/ViahIsGit/dksocial-sub000/internal/handler"
	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
	"github.com/ViahIsGit/dksocial-sub000/internal/repository"
	"github.com/ViahIsGit/dksocial-sub000/internal/router"
	"github.com/ViahIsGit/dksocial-sub000/internal/service"
	"github.com/ViahIsGit/dksocial-sub000/internal/storage"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "dksocial-feed")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	cache := service.NewCacheService(cfg.RedisURL)
	defer cache.Close()

	media := storage.NewMediaStore(storage.Config{
		Endpoint:  cfg.MediaEndpoint,
		AccessKey: cfg.MediaAccess,
		SecretKey: cfg.MediaSecret,
		UseSSL:    cfg.MediaUseSSL,
		Bucket:    cfg.MediaBucket,
	})
	if err := media.EnsureBucket(ctx); err != nil {
		log.Printf("media: bucket check failed: %v", err)
	}

	events := service.NewEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer events.Close()

	videoRepo := repository.NewVideoRepo(pool)
	userRepo := repository.NewUserRepo(pool)
	engagementRepo := repository.NewEngagementRepo(pool)
	commentRepo := repository.NewCommentRepo(pool)

	ranker := service.NewRankService()
	viewWorker := service.NewViewWorker(videoRepo, cache)
	engagementSvc := service.NewEngagementService(engagementRepo, userRepo, videoRepo, commentRepo, cache, events)
	videoSvc := service.NewVideoService(videoRepo, engagementRepo, userRepo, media, ranker, cache)
	userSvc := service.NewUserService(userRepo, media, cache)
	candidates := service.NewCachedCandidates(videoRepo, cache)
	sessions := service.NewSessionManager(candidates, userRepo, ranker, viewWorker, engagementSvc, videoSvc)
	trending := service.NewTrendingWorker(videoRepo, ranker, cache)

	go viewWorker.Start(ctx)
	go sessions.Start(ctx)
	go trending.Start(ctx)

	handler.InitMetrics(pool, sessions.Count)
	cache.SetCounters(handler.Metrics.CacheHits.Inc, handler.Metrics.CacheMisses.Inc)
	ranker.SetObserver(handler.Metrics.RankDuration.Observe)

	app := fiber.New(fiber.Config{
		AppName:      "DKSocial Feed API",
		ServerHeader: "DKSocial",
	})

	router.Setup(app, &router.Handlers{
		Feed:       handler.NewFeedHandler(sessions),
		Video:      handler.NewVideoHandler(videoSvc),
		Engagement: handler.NewEngagementHandler(engagementSvc),
		Comment:    handler.NewCommentHandler(engagementSvc),
		User:       handler.NewUserHandler(userSvc),
		Stats:      handler.NewStatsHandler(userSvc, sessions),
		Upload:     handler.NewUploadHandler(media),
		Health:     handler.NewHealthHandler(pool, cache.Client()),
	}, cfg.CORSOrigins, cfg.JWTSecret)

	go func() {
		<-ctx.Done()
		log.Println("shutting down")
		if err := app.Shutdown(); err != nil {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("DKSocial feed backend starting on :%s (env=%s)", cfg.Port, cfg.Environment)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
