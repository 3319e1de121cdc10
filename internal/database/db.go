package database

import (
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/presstimer/PressTimer-BE/internal/config"
	"github.com/presstimer/PressTimer-BE/internal/models"
)

// InitGorm 初始化 GORM 连接并运行自动迁移
// AutoMigrate 会自动创建表、补列、建索引；已有表只加不删
func InitGorm(cfg *config.Config) (*gorm.DB, error) {
	var db *gorm.DB
	var err error
	switch cfg.DBDriver {
	case "sqlite":
		// 本地开发：纯 Go 的 sqlite 驱动，不需要装 postgres
		db, err = gorm.Open(sqlite.Open(cfg.SQLitePath), &gorm.Config{
			Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		})
	default:
		db, err = gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}
	// Timer：计时器定义；PressEvent：按下历史；User：游客账号
	if err := db.AutoMigrate(&models.Timer{}, &models.PressEvent{}, &models.User{}); err != nil {
		return nil, err
	}
	return db, nil
}
