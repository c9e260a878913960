package db

import (
	"time"

	"gorm.io/gorm"
)

// Article 定义了文章模型。Content 在持久化前已完成内联图片的外提改写。
type Article struct {
	gorm.Model
	MemberID     uint           `gorm:"index;not null"`
	Member       Member
	Title        string         `gorm:"not null"`
	Category     string         `gorm:"index"`
	Content      string         `gorm:"type:text"`
	LikeCount    int64          `gorm:"default:0"`
	CommentCount int64          `gorm:"default:0"`
	Images       []ArticleImage `gorm:"constraint:OnDelete:CASCADE"`
}

// ArticleImage 记录文章挂载的对象存储图片，归属且仅归属一篇文章。
// 物理删除，不保留软删除记录。
type ArticleImage struct {
	ID        uint   `gorm:"primarykey"`
	ArticleID uint   `gorm:"index;not null"`
	URL       string `gorm:"size:512;not null"`
	Width     int
	Height    int
	CreatedAt time.Time
}

// ArticleLike 记录点赞标记。(article_id, member_id) 上的唯一索引由存储层
// 保证去重，因此必须物理删除，否则重复点赞会撞上历史记录。
type ArticleLike struct {
	ID        uint `gorm:"primarykey"`
	ArticleID uint `gorm:"uniqueIndex:idx_article_member;not null"`
	MemberID  uint `gorm:"uniqueIndex:idx_article_member;not null"`
	CreatedAt time.Time
}
