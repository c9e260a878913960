package handler

import (
	"net/http"

	"github.com/foodlog/internal/middleware"
	"github.com/gin-gonic/gin"
)

type commentCreateRequest struct {
	ArticleID uint   `json:"articleId"`
	Comment   string `json:"comment"`
	ParentID  *uint  `json:"parentId"`
}

type commentUpdateRequest struct {
	Comment string `json:"comment"`
}

type commentResponse struct {
	ID        uint   `json:"id"`
	ArticleID uint   `json:"articleId"`
	AuthorID  uint   `json:"authorId"`
	ParentID  *uint  `json:"parentId,omitempty"`
	Comment   string `json:"comment"`
	CreatedAt string `json:"createdAt"`
}

// CreateComment 发表评论，parentId 可选，用于楼中楼回复。
func (a *API) CreateComment(c *gin.Context) {
	var req commentCreateRequest
	if !bindJSON(c, &req, "invalid comment payload") {
		return
	}

	comment, err := a.comments.Create(req.ArticleID, middleware.MemberID(c), req.Comment, req.ParentID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": comment.ID})
}

// GetComments 返回文章的全部评论（平铺，创建时间升序）。
func (a *API) GetComments(c *gin.Context) {
	articleID, err := parseUintParam(c, "articleId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	comments, err := a.comments.ListByArticle(articleID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		responses = append(responses, commentResponse{
			ID:        comment.ID,
			ArticleID: comment.ArticleID,
			AuthorID:  comment.MemberID,
			ParentID:  comment.ParentID,
			Comment:   comment.Body,
			CreatedAt: comment.CreatedAt.Format("2006-01-02:15:04:05"),
		})
	}
	c.JSON(http.StatusOK, gin.H{"comments": responses})
}

// UpdateComment 修改自己的评论。
func (a *API) UpdateComment(c *gin.Context) {
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req commentUpdateRequest
	if !bindJSON(c, &req, "invalid comment payload") {
		return
	}

	if err := a.comments.Update(commentID, middleware.MemberID(c), req.Comment); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment updated"})
}

// DeleteComment 删除自己的评论及其全部子孙回复。
func (a *API) DeleteComment(c *gin.Context) {
	commentID, err := parseUintParam(c, "commentId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.comments.Delete(commentID, middleware.MemberID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "comment deleted"})
}
