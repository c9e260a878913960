package router

import (
	"strings"

	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/handler"
	"github.com/foodlog/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Setup 配置 Gin 引擎和路由
func Setup(cfg *config.AppConfig, api *handler.API) *gin.Engine {
	gin.SetMode(cfg.App.Mode)
	r := gin.Default()
	r.Use(cors.Default())

	// 本地对象存储通过静态路由对外提供
	if strings.HasPrefix(cfg.Storage.BaseURL, "/") {
		r.Static(cfg.Storage.BaseURL, cfg.Storage.Dir)
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	secret := cfg.Auth.JWTSecret
	v1 := r.Group("/api/v1")

	article := v1.Group("/article")
	{
		article.GET("/total", api.GetTotalArticles)
		article.GET("/top", api.GetTopArticles)
		article.GET("/detail", middleware.OptionalAuth(secret), api.GetArticleDetail)

		auth := article.Group("")
		auth.Use(middleware.Auth(secret))
		{
			auth.POST("/new", api.CreateArticle)
			auth.GET("/my-article", api.GetMyArticles)
			auth.PUT("/modify/:articleId", api.UpdateArticle)
			auth.DELETE("/delete/:articleId", api.DeleteArticle)
			auth.POST("/:articleId/like", api.ToggleLike)
		}
	}

	comment := v1.Group("/comment")
	{
		comment.GET("/:articleId", api.GetComments)

		auth := comment.Group("")
		auth.Use(middleware.Auth(secret))
		{
			auth.POST("/create", api.CreateComment)
			auth.PATCH("/:commentId", api.UpdateComment)
			auth.DELETE("/:commentId", api.DeleteComment)
		}
	}

	return r
}
