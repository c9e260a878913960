package service

import (
	"testing"

	"github.com/foodlog/internal/db"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupServiceTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func createTestMember(t *testing.T, gdb *gorm.DB, email, nickname string) db.Member {
	t.Helper()

	member := db.Member{Email: email, Nickname: nickname, Password: "x"}
	if err := gdb.Create(&member).Error; err != nil {
		t.Fatalf("failed to create test member: %v", err)
	}
	return member
}
