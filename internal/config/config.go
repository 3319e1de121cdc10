package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env        string // 运行环境：dev 或 prod
	Addr       string // 服务绑定地址，例如 :3001
	JWTSecret  string // JWT 签名密钥（游客身份验证用）
	JWTExpire  time.Duration
	DBDriver   string // postgres 或 sqlite（本地开发用）
	SQLitePath string
	// Postgres 数据库配置
	PGUser string
	PGPass string
	PGDB   string
	PGHost string
	PGPort string
}

// Cfg 全局配置，Load 之后可用
var Cfg *Config

// Load 从 .env 文件和环境变量读取配置
// 优先级：环境变量 > .env 文件 > 默认值
func Load() (*Config, error) {
	_ = godotenv.Load()

	c := &Config{
		Env:        get("ENV", "dev"),
		Addr:       get("ADDR", ":3001"),
		JWTSecret:  get("JWT_SECRET", "dev-guest-secret"),
		JWTExpire:  7 * 24 * time.Hour,
		DBDriver:   get("DB_DRIVER", "postgres"),
		SQLitePath: get("SQLITE_PATH", "presstimer.db"),
		PGUser:     get("PGUSER", "app"),
		PGPass:     get("PGPASSWORD", "app"),
		PGDB:       get("PGDATABASE", "appdb"),
		PGHost:     get("PGHOST", "localhost"),
		PGPort:     get("PGPORT", "5432"),
	}
	Cfg = c
	return c, nil
}

func (c *Config) DSN() string {
	// sslmode=disable 只用于开发环境，上线应改为 require
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Shanghai",
		c.PGHost, c.PGUser, c.PGPass, c.PGDB, c.PGPort,
	)
}

// get 从环境变量获取值，为空则返回默认值
func get(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
