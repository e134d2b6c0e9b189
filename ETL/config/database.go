package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/glebarez/sqlite"
	gomysql "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/LilVoxy/crm_warehouse/ETL/utils"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Dialector подбирает драйвер gorm по конфигурации хранилища
func Dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "mysql":
		mc := gomysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.DBName
		mc.ParseTime = true
		mc.Loc = time.UTC
		return mysql.Open(mc.FormatDSN()), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)
		return postgres.Open(dsn), nil
	case "sqlite":
		return sqlite.Open(cfg.Path), nil
	default:
		return nil, fmt.Errorf("неподдерживаемый драйвер хранилища: %q", cfg.Driver)
	}
}

// NewGormLogger направляет сообщения gorm в журнал ETL на уровне Warn
func NewGormLogger(log *utils.ETLLogger) (logger.Interface, error) {
	std, err := zap.NewStdLogAt(log.Zap().Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	return logger.New(std, logger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  logger.Warn,
		IgnoreRecordNotFoundError: true,
	}), nil
}

// ConnectDestination устанавливает подключение к хранилищу
func ConnectDestination(cfg DatabaseConfig, log *utils.ETLLogger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormLogger, err := NewGormLogger(log)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к хранилищу: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения пула соединений: %w", err)
	}

	// Настройка параметров подключения
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("не удалось установить соединение с хранилищем: %w", err)
	}

	return db, nil
}

// CloseDestination закрывает подключение к хранилищу
func CloseDestination(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
