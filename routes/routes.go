package routes

import (
	"net/http"
	"time"

	"keijiban/config"
	"keijiban/handlers"
	"keijiban/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(cfg *config.Config, h *handlers.Handler) *gin.Engine {
	router := gin.Default()
	router.SetHTMLTemplate(handlers.KanriTemplate())

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:3000", "http://127.0.0.1:3000",
			"http://localhost:5500", "http://127.0.0.1:5500",
		},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"mode":   cfg.AuthMode,
			"time":   time.Now().Unix(),
		})
	})

	// Public board pages.
	router.StaticFile("/", "./public/index.html")
	router.StaticFile("/script.js", "./public/script.js")

	limiter := middleware.NewRateLimiter(60, time.Minute)

	router.GET("/posts", h.ListPosts)
	router.POST("/posts", limiter.Handler(), h.CreatePost)
	router.POST("/posts/:postId/comments", limiter.Handler(), h.CreateComment)

	kanri := router.Group("/kanri")
	kanri.GET("", h.KanriPage)
	kanri.GET("/data", h.AdminListPosts)
	kanri.POST("/delete-post/:postId", h.AdminDeletePost)
	kanri.POST("/delete-comment/:postId/:commentId", h.AdminDeleteComment)

	// User management only exists in role mode; key mode has no accounts.
	if cfg.AuthMode == config.AuthModeRole {
		kanri.POST("/login", h.Login)
		kanri.POST("/create-user", h.CreateUser)
		kanri.GET("/users", h.ListUsers)
		kanri.POST("/delete-user/:targetId", h.DeleteUser)
		kanri.POST("/update-role/:targetId", h.UpdateRole)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "endpoint not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
