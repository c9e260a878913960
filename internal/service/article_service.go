package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/foodlog/internal/cache"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/storage"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrNotOwner        = errors.New("requester is not the owner")
	ErrMissingField    = errors.New("required field is missing")
)

// ArticleService orchestrates the article lifecycle: inline image hoisting,
// attached image reconciliation, persistence and blob cleanup.
type ArticleService struct {
	db    *gorm.DB
	blobs storage.BlobStore
	cache *cache.ArticleCache
}

// ArticleInput represents fields accepted when creating or updating an article.
type ArticleInput struct {
	Title    string
	Content  string
	Category string
}

// UploadedFile carries one binary image upload from the request layer.
type UploadedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// ArticleSummary is one row of the public article feed.
type ArticleSummary struct {
	ID             uint   `json:"id"`
	Title          string `json:"title"`
	Category       string `json:"category"`
	FirstImageURL  string `json:"firstImageUrl,omitempty"`
	AuthorID       uint   `json:"authorId"`
	AuthorNickname string `json:"authorNickname"`
}

// ArticleDetail is the full article view.
type ArticleDetail struct {
	ID             uint      `json:"id"`
	Title          string    `json:"title"`
	Category       string    `json:"category"`
	Content        string    `json:"content"`
	LikeCount      int64     `json:"likeCount"`
	CommentCount   int64     `json:"commentCount"`
	Images         []string  `json:"images"`
	AuthorID       uint      `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	MyArticle      bool      `json:"myArticle"`
	MyLike         bool      `json:"myLike"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// MyArticle is one row of the requester's own article list.
type MyArticle struct {
	ID        uint     `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Category  string   `json:"category"`
	LikeCount int64    `json:"likeCount"`
	Images    []string `json:"images"`
}

// NewArticleService creates an ArticleService instance. cache may be nil.
func NewArticleService(gdb *gorm.DB, blobs storage.BlobStore, articleCache *cache.ArticleCache) *ArticleService {
	return &ArticleService{db: gdb, blobs: blobs, cache: articleCache}
}

// Create validates the author, hoists inline images out of the body, uploads
// the attached files and persists the article with its image rows.
func (s *ArticleService) Create(memberID uint, input ArticleInput, uploads []UploadedFile) (*db.Article, error) {
	if err := validateArticleInput(input); err != nil {
		return nil, err
	}

	var member db.Member
	if err := s.db.First(&member, memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMemberNotFound
		}
		return nil, err
	}

	ownerKey := fmt.Sprint(memberID)
	content, hoisted, err := HoistInlineImages(s.blobs, input.Content, ownerKey)
	if err != nil {
		return nil, err
	}

	uploaded, err := s.uploadFiles(ownerKey, uploads)
	if err != nil {
		return nil, err
	}

	article := db.Article{
		MemberID: memberID,
		Title:    strings.TrimSpace(input.Title),
		Category: strings.TrimSpace(input.Category),
		Content:  content,
	}
	for _, img := range append(hoisted, uploaded...) {
		article.Images = append(article.Images, db.ArticleImage{
			URL:    img.URL,
			Width:  img.Width,
			Height: img.Height,
		})
	}

	if err := s.db.Create(&article).Error; err != nil {
		return nil, err
	}

	s.cache.InvalidateArticleList()
	return &article, nil
}

// Update rewrites the body, reconciles the attached image set and persists the
// result. Blob objects dropped by the reconciliation are deleted only after
// the database write has committed, so a failed write never orphans a URL
// that is still referenced.
func (s *ArticleService) Update(articleID, requesterID uint, input ArticleInput, uploads []UploadedFile, deleteURLs []string) error {
	var article db.Article
	if err := s.db.Preload("Images").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	// Ownership is checked before any image processing so an unauthorized
	// request performs no uploads.
	if article.MemberID != requesterID {
		return ErrNotOwner
	}

	if err := validateArticleInput(input); err != nil {
		return err
	}

	ownerKey := fmt.Sprint(requesterID)
	content, hoisted, err := HoistInlineImages(s.blobs, input.Content, ownerKey)
	if err != nil {
		return err
	}

	uploaded, err := s.uploadFiles(ownerKey, uploads)
	if err != nil {
		return err
	}

	produced := append(hoisted, uploaded...)
	producedURLs := make([]string, 0, len(produced))
	dimensions := make(map[string][2]int, len(produced)+len(article.Images))
	for _, img := range produced {
		producedURLs = append(producedURLs, img.URL)
		dimensions[img.URL] = [2]int{img.Width, img.Height}
	}
	existingURLs := make([]string, 0, len(article.Images))
	for _, img := range article.Images {
		existingURLs = append(existingURLs, img.URL)
		if _, ok := dimensions[img.URL]; !ok {
			dimensions[img.URL] = [2]int{img.Width, img.Height}
		}
	}

	rec := ReconcileImages(existingURLs, deleteURLs, producedURLs)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.Article{}).Where("id = ?", article.ID).Updates(map[string]interface{}{
			"title":    strings.TrimSpace(input.Title),
			"category": strings.TrimSpace(input.Category),
			"content":  content,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("article_id = ?", article.ID).Delete(&db.ArticleImage{}).Error; err != nil {
			return err
		}

		rows := make([]db.ArticleImage, 0, len(rec.Final))
		for _, url := range rec.Final {
			dims := dimensions[url]
			rows = append(rows, db.ArticleImage{
				ArticleID: article.ID,
				URL:       url,
				Width:     dims[0],
				Height:    dims[1],
			})
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return err
	}

	s.deleteBlobs(rec.Delete)
	s.cache.InvalidateArticleList()
	return nil
}

// Delete removes the article, its comment forest and its blob objects.
// Comments are deleted subtree by subtree before the article row because the
// storage layer only cascades images and like marks.
func (s *ArticleService) Delete(articleID, requesterID uint) error {
	var article db.Article
	if err := s.db.Preload("Images").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		return err
	}

	if article.MemberID != requesterID {
		return ErrNotOwner
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var roots []db.Comment
		if err := tx.Where("article_id = ? AND parent_id IS NULL", article.ID).Find(&roots).Error; err != nil {
			return err
		}
		for _, root := range roots {
			if _, err := deleteCommentSubtree(tx, root.ID); err != nil {
				return err
			}
		}

		if err := tx.Where("article_id = ?", article.ID).Delete(&db.ArticleImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", article.ID).Delete(&db.ArticleLike{}).Error; err != nil {
			return err
		}
		return tx.Delete(&db.Article{}, article.ID).Error
	})
	if err != nil {
		return err
	}

	urls := make([]string, 0, len(article.Images))
	for _, img := range article.Images {
		urls = append(urls, img.URL)
	}
	s.deleteBlobs(urls)
	s.cache.InvalidateArticleList()
	return nil
}

// ListAll returns the public feed, newest first, via the list cache when warm.
func (s *ArticleService) ListAll() ([]ArticleSummary, error) {
	if data, ok := s.cache.GetArticleList(); ok {
		var cached []ArticleSummary
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	var articles []db.Article
	if err := s.db.Preload("Images").Preload("Member").
		Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, err
	}

	summaries := make([]ArticleSummary, 0, len(articles))
	for _, a := range articles {
		summary := ArticleSummary{
			ID:             a.ID,
			Title:          a.Title,
			Category:       a.Category,
			AuthorID:       a.MemberID,
			AuthorNickname: a.Member.Nickname,
		}
		if len(a.Images) > 0 {
			summary.FirstImageURL = a.Images[0].URL
		}
		summaries = append(summaries, summary)
	}

	if data, err := json.Marshal(summaries); err == nil {
		s.cache.SetArticleList(data)
	}
	return summaries, nil
}

// GetDetail returns the full article view. viewerID 0 means anonymous.
func (s *ArticleService) GetDetail(articleID, viewerID uint) (*ArticleDetail, error) {
	var article db.Article
	if err := s.db.Preload("Images").Preload("Member").First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	detail := &ArticleDetail{
		ID:             article.ID,
		Title:          article.Title,
		Category:       article.Category,
		Content:        article.Content,
		LikeCount:      article.LikeCount,
		CommentCount:   article.CommentCount,
		AuthorID:       article.MemberID,
		AuthorNickname: article.Member.Nickname,
		UpdatedAt:      article.UpdatedAt,
	}
	for _, img := range article.Images {
		detail.Images = append(detail.Images, img.URL)
	}

	if viewerID != 0 {
		detail.MyArticle = article.MemberID == viewerID
		var count int64
		if err := s.db.Model(&db.ArticleLike{}).
			Where("article_id = ? AND member_id = ?", articleID, viewerID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		detail.MyLike = count > 0
	}

	return detail, nil
}

// ListByMember returns every article written by memberID.
func (s *ArticleService) ListByMember(memberID uint) ([]MyArticle, error) {
	var articles []db.Article
	if err := s.db.Preload("Images").Where("member_id = ?", memberID).
		Order("created_at desc").Find(&articles).Error; err != nil {
		return nil, err
	}

	mine := make([]MyArticle, 0, len(articles))
	for _, a := range articles {
		row := MyArticle{
			ID:        a.ID,
			Title:     a.Title,
			Content:   a.Content,
			Category:  a.Category,
			LikeCount: a.LikeCount,
		}
		for _, img := range a.Images {
			row.Images = append(row.Images, img.URL)
		}
		mine = append(mine, row)
	}
	return mine, nil
}

// TopLiked exposes the like rank when the cache is configured.
func (s *ArticleService) TopLiked(n int) []cache.RankEntry {
	return s.cache.TopLiked(n)
}

func (s *ArticleService) uploadFiles(ownerKey string, uploads []UploadedFile) ([]HoistedImage, error) {
	images := make([]HoistedImage, 0, len(uploads))
	for _, file := range uploads {
		ext := filepath.Ext(file.Name)
		if ext == "" {
			if exts, err := mime.ExtensionsByType(file.ContentType); err == nil && len(exts) > 0 {
				ext = exts[0]
			}
		}

		filename := fmt.Sprintf("%s-%s%s", time.Now().Format("20060102"), uuid.New().String(), ext)
		url, err := s.blobs.Put(ownerKey, filename, file.Data)
		if err != nil {
			return nil, err
		}

		width, height := probeImageDimensions(file.Data)
		images = append(images, HoistedImage{URL: url, Width: width, Height: height})
	}
	return images, nil
}

// deleteBlobs runs after the relational write has committed. A failed delete
// leaves an orphaned but unreferenced object, which is harmless.
func (s *ArticleService) deleteBlobs(urls []string) {
	for _, url := range urls {
		if err := s.blobs.Delete(url); err != nil {
			log.Printf("failed to delete blob %s: %v", url, err)
		}
	}
}

func validateArticleInput(input ArticleInput) error {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Content) == "" ||
		strings.TrimSpace(input.Category) == "" {
		return ErrMissingField
	}
	return nil
}
