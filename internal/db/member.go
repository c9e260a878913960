package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Member 定义了用户模型
type Member struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;size:191;not null"`
	Nickname string `gorm:"not null"`
	Password string `gorm:"not null"`
}

// EnsureMember 存在性检查：若邮箱尚未注册，则创建一个 bcrypt 哈希密码的成员。
func EnsureMember(email, nickname, password string) error {
	trimmedEmail := strings.TrimSpace(email)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing Member
	if err := DB.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&Member{
			Email:    trimmedEmail,
			Nickname: strings.TrimSpace(nickname),
			Password: string(hashed),
		}).Error
	}

	return nil
}
