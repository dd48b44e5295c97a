package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/ViahIsGit/dksocial-sub000/internal/handler"
	"github.com/ViahIsGit/dksocial-sub000/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Feed       *handler.FeedHandler
	Video      *handler.VideoHandler
	Engagement *handler.EngagementHandler
	Comment    *handler.CommentHandler
	User       *handler.UserHandler
	Stats      *handler.StatsHandler
	Upload     *handler.UploadHandler
	Health     *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins, jwtSecret string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(handler.MetricsMiddleware())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(middleware.NewAuth(jwtSecret))

	// Probes and metrics (before the API group, no auth needed)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", handler.MetricsHandler())

	api := app.Group("/api")

	feedLimit := middleware.NewFeedRateLimiter().Handler()
	signalLimit := middleware.NewSignalRateLimiter().Handler()
	engageLimit := middleware.NewEngagementRateLimiter().Handler()
	commentLimit := middleware.NewCommentRateLimiter().Handler()
	uploadLimit := middleware.NewUploadRateLimiter().Handler()
	statsLimit := middleware.NewStatsRateLimiter().Handler()

	// Feed sessions
	api.Post("/feed/sessions", h.Feed.CreateSession, feedLimit)
	api.Get("/feed/sessions/:sessionId", h.Feed.GetSession, signalLimit)
	api.Delete("/feed/sessions/:sessionId", h.Feed.DeleteSession, signalLimit)
	api.Post("/feed/sessions/:sessionId/visibility", h.Feed.Visibility, signalLimit)
	api.Post("/feed/sessions/:sessionId/gesture", h.Feed.Gesture, signalLimit)
	api.Post("/feed/sessions/:sessionId/playback", h.Feed.Playback, signalLimit)

	// Videos
	api.Get("/videos/:videoId", h.Video.Get)
	api.Post("/videos", h.Video.Create, middleware.RequireViewer, uploadLimit)

	// Engagement
	api.Post("/videos/:videoId/like", h.Engagement.Like, engageLimit)
	api.Post("/videos/:videoId/favorite", h.Engagement.Favorite, engageLimit)
	api.Post("/videos/:videoId/share", h.Engagement.Share, engageLimit)
	api.Post("/users/:userId/follow", h.Engagement.Follow, engageLimit)

	// Comments
	api.Get("/videos/:videoId/comments", h.Comment.List)
	api.Post("/videos/:videoId/comments", h.Comment.Post, commentLimit)

	// Uploads
	api.Post("/uploads", h.Upload.Presign, middleware.RequireViewer, uploadLimit)

	// Users and stats
	api.Get("/users/:userId", h.User.GetProfile)
	api.Get("/stats", h.Stats.GetStats, statsLimit)
}
