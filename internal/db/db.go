package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DB 是一个全局的数据库连接实例
var DB *gorm.DB

// Init 初始化数据库连接并执行自动迁移。
// driver 支持 sqlite 与 mysql，为空时默认 sqlite；dsn 为空时回退到 foodlog.db。
func Init(driver, dsn string) error {
	var dialector gorm.Dialector

	switch strings.TrimSpace(strings.ToLower(driver)) {
	case "", "sqlite":
		path := strings.TrimSpace(dsn)
		if path == "" {
			path = "foodlog.db"
		}
		if err := ensureParentDir(path); err != nil {
			return err
		}
		dialector = sqlite.Open(path)
	case "mysql":
		if strings.TrimSpace(dsn) == "" {
			return errors.New("mysql dsn is required")
		}
		dialector = mysql.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}

	var err error
	DB, err = gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return err
	}

	return Migrate(DB)
}

// Migrate 为核心模型创建表和索引。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&Member{},
		&Article{},
		&ArticleImage{},
		&ArticleLike{},
		&Comment{},
	)
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}

	info, err := os.Stat(dir)
	if err == nil {
		if !info.IsDir() {
			return errors.New("database path parent is not a directory")
		}
		return nil
	}

	if os.IsNotExist(err) {
		return os.MkdirAll(dir, 0o755)
	}

	return err
}
