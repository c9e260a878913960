package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/foodlog/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// respondServiceError 把服务层错误映射为对应的 HTTP 状态码，
// 保证调用方能区分 not found / forbidden / bad input。
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArticleNotFound),
		errors.Is(err, service.ErrMemberNotFound),
		errors.Is(err, service.ErrCommentNotFound),
		errors.Is(err, service.ErrParentCommentNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotOwner):
		respondError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInlineImageDecode):
		respondError(c, http.StatusBadRequest, err.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
