package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/tunneldeck/tunneldeck/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

func Init() error {
	dbPath := config.Cfg.DatabasePath
	if dbDir := filepath.Dir(dbPath); dbDir != "" {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return fmt.Errorf("create db directory: %w", err)
		}
	}

	var err error
	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("set WAL mode: %w", err)
	}

	if err := DB.AutoMigrate(&Setting{}, &ActionLog{}); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	return nil
}

func Close() error {
	if DB != nil {
		sqlDB, err := DB.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

func GetSetting(key string) (string, error) {
	var s Setting
	if err := DB.Where("key = ?", key).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

func SetSetting(key, value string) error {
	return DB.Where("key = ?", key).Assign(Setting{Value: value}).FirstOrCreate(&Setting{Key: key}).Error
}

// CachedAuthState returns the advisory authenticated flag and when it was
// last refreshed. Both are best-effort: a missing or unreadable row reads
// as unauthenticated/zero time.
func CachedAuthState() (bool, time.Time) {
	authed := false
	if v, err := GetSetting(SettingAuthenticated); err == nil {
		authed, _ = strconv.ParseBool(v)
	}
	var checked time.Time
	if v, err := GetSetting(SettingLastAuthCheck); err == nil {
		checked, _ = time.Parse(time.RFC3339, v)
	}
	return authed, checked
}

// RecordAuthState refreshes the advisory cache. Errors are returned for
// logging only; callers must not treat a failed write as a failed check.
func RecordAuthState(authenticated bool) error {
	if err := SetSetting(SettingAuthenticated, strconv.FormatBool(authenticated)); err != nil {
		return err
	}
	return SetSetting(SettingLastAuthCheck, time.Now().UTC().Format(time.RFC3339))
}

// RecordAction appends one row to the operator action log.
func RecordAction(entry *ActionLog) error {
	return DB.Create(entry).Error
}

// RecentActions returns the most recent n action log rows, newest first.
func RecentActions(n int) ([]ActionLog, error) {
	var entries []ActionLog
	if err := DB.Order("id desc").Limit(n).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
