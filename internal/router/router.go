package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/user/movierec/internal/handler"
	"github.com/user/movierec/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 认证 ====================
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.GET("/me", middleware.OptionalAuth(h.Config.AppSecret), h.Me)
		auth.POST("/password", middleware.RequireAuth(h.Config.AppSecret), h.ChangePassword)
	}

	// ==================== 目录与评分 ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.GET("/movies", h.ListMovies)
		api.GET("/movies/:title", h.GetMovie)
		api.GET("/movies/:title/ratings", h.ListMovieRatings)
		api.GET("/genres", h.Genres)
		api.GET("/poster/:file", h.Poster)
	}

	// 需要登录的操作
	user := r.Group("/api")
	user.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		user.POST("/movies/:title/ratings", h.SubmitRating)
		user.PUT("/movies/:title/ratings", h.EditRating)
		user.GET("/me/ratings", h.MyRatings)
		user.GET("/recommendations", h.Recommendations)
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("/users", h.AdminUsers)
		admin.DELETE("/users/:username", h.AdminDeleteUser)
		admin.PUT("/reviews", h.AdminEditReview)
		admin.DELETE("/ratings", h.AdminDeleteRating)
		admin.PUT("/movies/genre", h.AdminUpdateGenre)
	}
}
