package service

import (
	"errors"
	"strings"

	"github.com/foodlog/internal/db"
	"gorm.io/gorm"
)

var (
	ErrCommentNotFound       = errors.New("comment not found")
	ErrParentCommentNotFound = errors.New("parent comment not found")
)

// CommentService manages threaded comments. Parent links form a forest per
// article because a comment can only reference a parent that already exists.
type CommentService struct {
	db *gorm.DB
}

// NewCommentService creates a CommentService instance.
func NewCommentService(gdb *gorm.DB) *CommentService {
	return &CommentService{db: gdb}
}

// Create persists a comment, optionally threaded under parentID, and bumps
// the article's denormalized comment counter atomically.
func (s *CommentService) Create(articleID, memberID uint, body string, parentID *uint) (*db.Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrMissingField
	}

	comment := db.Comment{
		ArticleID: articleID,
		MemberID:  memberID,
		ParentID:  parentID,
		Body:      body,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var member db.Member
		if err := tx.First(&member, memberID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}
		var article db.Article
		if err := tx.First(&article, articleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrArticleNotFound
			}
			return err
		}
		if parentID != nil {
			var parent db.Comment
			if err := tx.First(&parent, *parentID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrParentCommentNotFound
				}
				return err
			}
		}

		if err := tx.Create(&comment).Error; err != nil {
			return err
		}
		return tx.Model(&db.Article{}).Where("id = ?", articleID).
			UpdateColumn("comment_count", gorm.Expr("comment_count + ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}

	return &comment, nil
}

// ListByArticle returns the article's comments as a flat list,
// ordered by creation time then id.
func (s *CommentService) ListByArticle(articleID uint) ([]db.Comment, error) {
	var article db.Article
	if err := s.db.First(&article, articleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}

	var comments []db.Comment
	if err := s.db.Where("article_id = ?", articleID).
		Order("created_at asc, id asc").Find(&comments).Error; err != nil {
		return nil, err
	}
	return comments, nil
}

// Update replaces the comment body after an ownership check.
func (s *CommentService) Update(commentID, requesterID uint, body string) error {
	if strings.TrimSpace(body) == "" {
		return ErrMissingField
	}

	var comment db.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.MemberID != requesterID {
		return ErrNotOwner
	}

	return s.db.Model(&comment).Update("body", body).Error
}

// Delete removes the comment together with its whole descendant subtree and
// rolls the article's comment counter back by the number of removed nodes.
func (s *CommentService) Delete(commentID, requesterID uint) error {
	var comment db.Comment
	if err := s.db.First(&comment, commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}
	if comment.MemberID != requesterID {
		return ErrNotOwner
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		removed, err := deleteCommentSubtree(tx, comment.ID)
		if err != nil {
			return err
		}
		return tx.Model(&db.Article{}).Where("id = ?", comment.ArticleID).
			UpdateColumn("comment_count", gorm.Expr("comment_count - ?", removed)).Error
	})
}

// deleteCommentSubtree removes commentID and every descendant in post-order:
// each node is deleted only after all of its children are gone. Terminates
// because the parent graph is a finite forest. Returns the number of nodes
// removed.
func deleteCommentSubtree(tx *gorm.DB, commentID uint) (int64, error) {
	var children []db.Comment
	if err := tx.Where("parent_id = ?", commentID).Find(&children).Error; err != nil {
		return 0, err
	}

	var removed int64
	for _, child := range children {
		n, err := deleteCommentSubtree(tx, child.ID)
		if err != nil {
			return removed, err
		}
		removed += n
	}

	if err := tx.Delete(&db.Comment{}, commentID).Error; err != nil {
		return removed, err
	}
	return removed + 1, nil
}
