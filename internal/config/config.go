package config

import (
	"strings"

	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	App struct {
		Name string
		Port string
		Mode string
	}
	Database struct {
		Driver string
		DSN    string
	}
	Storage struct {
		Dir     string
		BaseURL string `mapstructure:"base_url"`
	}
	Auth struct {
		JWTSecret string `mapstructure:"jwt_secret"`
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	RabbitMQ struct {
		URL   string
		Queue string
	}
}

// Load 读取 config.yml 并以环境变量覆盖，缺失项回退到安全默认值。
func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("FOODLOG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.name", "foodlog")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.mode", "release")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "foodlog.db")
	v.SetDefault("storage.dir", "web/static/uploads")
	v.SetDefault("storage.base_url", "/static/uploads")
	v.SetDefault("auth.jwt_secret", "foodlog-dev-secret")
	v.SetDefault("rabbitmq.queue", "article.like")

	if err := v.ReadInConfig(); err != nil {
		// 配置文件缺失时仅依赖默认值与环境变量
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
