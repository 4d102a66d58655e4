package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/01moynul/carlisting-golang/internal/handlers"
	"github.com/01moynul/carlisting-golang/internal/middleware"
)

// Config carries what the router needs beyond the handlers.
type Config struct {
	APIPrefix      string
	CORSOrigins    []string
	RequestTimeout time.Duration
	Tokens         middleware.TokenValidator
	Users          middleware.UserLookup
	EventLimiter   *middleware.RateLimiter
	Logger         *zap.Logger
}

func SetupRouter(h *handlers.Handlers, cfg Config) *gin.Engine {
	router := gin.New()
	router.Use(
		middleware.RequestLogger(cfg.Logger),
		middleware.Recovery(cfg.Logger),
		middleware.CORSMiddleware(cfg.CORSOrigins),
		middleware.RequestTimeout(cfg.RequestTimeout),
	)

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group(cfg.APIPrefix)
	{
		// --- Public ---
		api.POST("/users/signup", h.Signup)
		api.POST("/login/access-token", h.Login)

		events := api.Group("/events")
		if cfg.EventLimiter != nil {
			events.POST("", cfg.EventLimiter.Middleware(), h.CreateEvent)
		} else {
			events.POST("", h.CreateEvent)
		}

		recommend := api.Group("/items/recommend")
		recommend.GET("/most_popular", h.MostPopular)
		recommend.GET("/:id/similar", h.SimilarItems)
		recommend.POST("/similar_query", h.SimilarQuery)

		// --- Login required ---
		auth := api.Group("")
		auth.Use(middleware.AuthMiddleware(cfg.Tokens, cfg.Users, cfg.Logger))
		{
			auth.GET("/users/me", h.Me)

			auth.GET("/items", h.ListItems)
			auth.POST("/items", h.CreateItem)
			auth.POST("/items/uploadcsv", h.UploadCSV)
			auth.GET("/items/:id", h.GetItem)
			auth.PUT("/items/:id", h.UpdateItem)
			auth.DELETE("/items/:id", h.DeleteItem)
			auth.POST("/items/:id/sell", h.SellItem)

			// --- Superuser only ---
			admin := auth.Group("")
			admin.Use(middleware.SuperuserMiddleware())
			{
				admin.DELETE("/users/:id", h.DeleteUser)
				admin.GET("/events/popularity", h.GetPopularity)
			}
		}
	}

	return router
}
