// Package db opens the gorm handle selected by database.mode.
package db

import (
	"errors"
	"fmt"

	"github.com/kasuganosora/enemyai/config"
	dbmysql "github.com/kasuganosora/enemyai/db/mysql"
	dbsqlite "github.com/kasuganosora/enemyai/db/sqlite"
	"gorm.io/gorm"
)

const (
	ModeNone   = "none"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// ErrDisabled is returned by Open when persistence is switched off.
var ErrDisabled = errors.New("db: persistence disabled")

// Open returns a *gorm.DB for the configured database mode.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Mode {
	case ModeNone, "":
		return nil, ErrDisabled
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
