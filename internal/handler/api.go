package handler

import "github.com/foodlog/internal/service"

// API 聚合各服务，供路由层挂载处理函数。
type API struct {
	articles *service.ArticleService
	comments *service.CommentService
	likes    *service.LikeService
}

// NewAPI creates an API instance.
func NewAPI(articles *service.ArticleService, comments *service.CommentService, likes *service.LikeService) *API {
	return &API{articles: articles, comments: comments, likes: likes}
}
