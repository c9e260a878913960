package db

import "gorm.io/gorm"

// Comment 定义了评论模型。ParentID 为空表示顶层评论；
// 父引用只能指向创建时已存在的评论，因此同一文章内的评论构成森林。
type Comment struct {
	gorm.Model
	ArticleID uint   `gorm:"index;not null"`
	MemberID  uint   `gorm:"index;not null"`
	ParentID  *uint  `gorm:"index"`
	Body      string `gorm:"type:text;not null"`
}
