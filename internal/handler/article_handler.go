package handler

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/foodlog/internal/middleware"
	"github.com/foodlog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// 允许上传的图片 MIME 类型
var allowedImageMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/jpg":  true,
	"image/bmp":  true,
	"image/webp": true,
}

// CreateArticle 处理 multipart 文章发布请求。
func (a *API) CreateArticle(c *gin.Context) {
	input := service.ArticleInput{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Category: c.PostForm("category"),
	}

	uploads, ok := a.collectUploads(c)
	if !ok {
		return
	}

	article, err := a.articles.Create(middleware.MemberID(c), input, uploads)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": article.ID})
}

// UpdateArticle 处理 multipart 文章修改请求，表单可携带 deleteImageUrls。
func (a *API) UpdateArticle(c *gin.Context) {
	articleID, err := parseUintParam(c, "articleId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	input := service.ArticleInput{
		Title:    c.PostForm("title"),
		Content:  c.PostForm("content"),
		Category: c.PostForm("category"),
	}

	uploads, ok := a.collectUploads(c)
	if !ok {
		return
	}
	deleteURLs := c.PostFormArray("deleteImageUrls")

	if err := a.articles.Update(articleID, middleware.MemberID(c), input, uploads, deleteURLs); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "article updated"})
}

// DeleteArticle 删除文章及其评论森林与图片对象。
func (a *API) DeleteArticle(c *gin.Context) {
	articleID, err := parseUintParam(c, "articleId")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := a.articles.Delete(articleID, middleware.MemberID(c)); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "article deleted"})
}

// GetTotalArticles 返回全部文章列表，按创建时间倒序。
func (a *API) GetTotalArticles(c *gin.Context) {
	summaries, err := a.articles.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": summaries})
}

// GetTopArticles 返回点赞排行榜，排行榜未配置时为空列表。
func (a *API) GetTopArticles(c *gin.Context) {
	n, err := strconv.Atoi(c.DefaultQuery("top", "10"))
	if err != nil || n <= 0 {
		n = 10
	}
	c.JSON(http.StatusOK, gin.H{"rank": a.articles.TopLiked(n)})
}

// GetArticleDetail 返回文章详情；携带令牌时附加 myArticle/myLike 标记。
func (a *API) GetArticleDetail(c *gin.Context) {
	raw := c.Query("articleId")
	articleID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid articleId")
		return
	}

	detail, err := a.articles.GetDetail(uint(articleID), middleware.MemberID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var rendered bytes.Buffer
	if err := markdownEngine.Convert([]byte(detail.Content), &rendered); err == nil {
		c.JSON(http.StatusOK, gin.H{
			"article":         detail,
			"renderedContent": sanitizer.Sanitize(rendered.String()),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"article": detail})
}

// GetMyArticles 返回当前成员发布的全部文章。
func (a *API) GetMyArticles(c *gin.Context) {
	mine, err := a.articles.ListByMember(middleware.MemberID(c))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "internal error")
		return
	}
	c.JSON(http.StatusOK, gin.H{"articles": mine})
}

// collectUploads 读取 multipart 的 images 字段并校验 MIME 白名单。
func (a *API) collectUploads(c *gin.Context) ([]service.UploadedFile, bool) {
	form, err := c.MultipartForm()
	if err != nil || form == nil {
		return nil, true
	}

	files := form.File["images"]
	uploads := make([]service.UploadedFile, 0, len(files))
	for _, file := range files {
		contentType := file.Header.Get("Content-Type")
		if !allowedImageMIME[contentType] {
			respondError(c, http.StatusBadRequest, "image mime type is not allowed")
			return nil, false
		}

		data, err := readMultipartFile(file)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read uploaded image")
			return nil, false
		}
		uploads = append(uploads, service.UploadedFile{
			Name:        file.Filename,
			ContentType: contentType,
			Data:        data,
		})
	}
	return uploads, true
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}
