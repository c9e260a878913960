package service

import (
	"errors"

	"github.com/foodlog/internal/cache"
	"github.com/foodlog/internal/db"
	"github.com/foodlog/internal/events"
	"gorm.io/gorm"
)

// LikeService toggles per-(article, member) like marks and keeps the
// denormalized like counter consistent. The counter is never read-modified-
// written in process: it moves by an atomic SQL increment inside the same
// transaction as the mark insert or delete, and the unique index on
// (article_id, member_id) rules out duplicate marks under concurrent toggles.
type LikeService struct {
	db     *gorm.DB
	cache  *cache.ArticleCache
	events *events.Publisher
}

// NewLikeService creates a LikeService instance. cache and publisher may be nil.
func NewLikeService(gdb *gorm.DB, articleCache *cache.ArticleCache, publisher *events.Publisher) *LikeService {
	return &LikeService{db: gdb, cache: articleCache, events: publisher}
}

// Toggle flips the like state for the pair and returns the new state.
func (s *LikeService) Toggle(articleID, memberID uint) (bool, error) {
	liked := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var article db.Article
		if err := tx.First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}
		var member db.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		var mark db.ArticleLike
		err := tx.Where("article_id = ? AND member_id = ?", articleID, memberID).First(&mark).Error
		switch {
		case err == nil:
			if err := tx.Delete(&mark).Error; err != nil {
				return err
			}
			return tx.Model(&db.Article{}).Where("id = ?", articleID).
				UpdateColumn("like_count", gorm.Expr("like_count - ?", 1)).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := tx.Create(&db.ArticleLike{ArticleID: articleID, MemberID: memberID}).Error; err != nil {
				return err
			}
			liked = true
			return tx.Model(&db.Article{}).Where("id = ?", articleID).
				UpdateColumn("like_count", gorm.Expr("like_count + ?", 1)).Error
		default:
			return err
		}
	})
	if err != nil {
		return false, err
	}

	s.cache.BumpLikeRank(articleID, liked)
	s.events.LikeToggled(articleID, memberID, liked)
	return liked, nil
}
