package main

import (
	"flag"
	"log"

	"github.com/foodlog/internal/config"
	"github.com/foodlog/internal/db"
)

// 初始化成员账号的运维工具。令牌签发由外部认证服务负责，
// 这里只负责写入 bcrypt 哈希后的账号记录。
func main() {
	email := flag.String("email", "", "member email (required)")
	nickname := flag.String("nickname", "", "display nickname")
	password := flag.String("password", "", "plaintext password to hash (required)")
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.Init(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	if err := db.EnsureMember(*email, *nickname, *password); err != nil {
		log.Fatalf("failed to seed member: %v", err)
	}

	log.Printf("member %s is ready", *email)
}
