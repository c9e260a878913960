package handler

import (
	"net/http"

	"github.com/foodlog/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ToggleLike 切换当前成员对文章的点赞状态，返回切换后的状态。
func (a *API) ToggleLike(c *gin.Context) {
	articleID, err := parseUintParam(c, "articleId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	liked, err := a.likes.Toggle(articleID, middleware.MemberID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}
