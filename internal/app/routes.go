package app

import (
	"net/http"

	"github.com/josenava/meal-calendar/internal/auth"
	"github.com/josenava/meal-calendar/internal/cache"
	"github.com/josenava/meal-calendar/internal/config"
	"github.com/josenava/meal-calendar/internal/handlers"
	"github.com/josenava/meal-calendar/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
	"go.uber.org/zap"
)

// NewRouter builds the engine with middleware and every route.
func NewRouter(cfg config.Config, deps Deps, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	reg := prometheus.NewRegistry()
	metrics := newMetrics(reg)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(log), metrics.middleware(), newCORS(cfg.HTTP))

	Setup(r, cfg, deps, log)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	return r
}

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, deps Deps, log *zap.Logger) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
		ginSwagger.PersistAuthorization(true),
	))

	api := r.Group("/api/v1")

	var mealCache service.MealCache
	if deps.Redis != nil {
		mealCache = cache.NewMealCache(deps.Redis, cfg.Redis.DefaultTTL.Duration())
	}
	mealSvc := service.NewMealService(deps.Meals, mealCache, log)
	mealHandler := handlers.NewMealHandler(mealSvc, log)

	if !cfg.Auth.Enabled {
		registerMealRoutes(api, mealHandler)
		return
	}

	var sessions auth.SessionStore = auth.NewMemoryStore()
	if deps.Redis != nil {
		sessions = auth.NewRedisStore(deps.Redis)
	}
	tokens := auth.NewTokens(cfg.Auth.SecretKey, cfg.Auth.TokenTTL.Duration(), sessions)
	userSvc := service.NewUserService(deps.Users)
	authHandler := handlers.NewAuthHandler(tokens, userSvc, log)
	requireToken := auth.RequireToken(tokens)
	registerAuthRoutes(api, authHandler, requireToken)

	protected := api.Group("", requireToken)
	registerMealRoutes(protected, mealHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Meal Calendar API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api/v1",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerMealRoutes(api *gin.RouterGroup, h *handlers.MealHandler) {
	api.GET("/meals", h.List)
	api.POST("/meals", h.Create)
	api.GET("/meals/search", h.Search)
	api.POST("/meals/swap", h.Swap)
	api.GET("/meals/:id", h.GetByID)
	api.PUT("/meals/:id", h.Update)
	api.DELETE("/meals/:id", h.Delete)
	api.POST("/meals/:id/copy", h.Copy)
	api.PATCH("/meals/:id/move", h.Move)
}

func registerAuthRoutes(api *gin.RouterGroup, h *handlers.AuthHandler, requireToken gin.HandlerFunc) {
	api.POST("/auth/token", h.Login)
	api.POST("/auth/login", h.Login)
	api.POST("/auth/register", h.Register)
	api.POST("/users/signup", h.Register)
	api.POST("/auth/logout", h.Logout)
	api.GET("/auth/me", requireToken, h.Me)
}
