package main

import (
	"log"

	"github.com/foodlog/internal/cache"
	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/events"
	"github.com/foodlog/internal/handler"
	"github.com/foodlog/internal/router"
	"github.com/foodlog/internal/service"
	"github.com/foodlog/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// 初始化数据库
	if err := db.Init(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	blobs := storage.NewLocalStore(cfg.Storage.Dir, cfg.Storage.BaseURL)

	// Redis 与 RabbitMQ 均为可选依赖，未配置或不可达时降级运行
	var articleCache *cache.ArticleCache
	if cfg.Redis.Addr != "" {
		articleCache, err = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("redis unavailable, running without cache: %v", err)
			articleCache = nil
		}
	}

	var publisher *events.Publisher
	if cfg.RabbitMQ.URL != "" {
		publisher, err = events.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue)
		if err != nil {
			log.Printf("rabbitmq unavailable, running without like events: %v", err)
			publisher = nil
		} else {
			defer publisher.Close()
		}
	}

	articles := service.NewArticleService(db.DB, blobs, articleCache)
	comments := service.NewCommentService(db.DB)
	likes := service.NewLikeService(db.DB, articleCache, publisher)
	api := handler.NewAPI(articles, comments, likes)

	// 设置并运行 Gin 服务器
	r := router.Setup(cfg, api)
	if err := r.Run(":" + cfg.App.Port); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
