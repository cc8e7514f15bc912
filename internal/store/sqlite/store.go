package sqlite

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"swingflow/internal/store"
	"swingflow/internal/store/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SqliteStore struct {
	db *gorm.DB
}

func NewSqliteStore(path string) (*SqliteStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, err
	}
	return newSqliteStore(db)
}

func NewSqliteStoreFromDB(db *gorm.DB) (*SqliteStore, error) {
	if db == nil {
		return nil, fmt.Errorf("gorm db cannot be nil")
	}
	return newSqliteStore(db)
}

func newSqliteStore(db *gorm.DB) (*SqliteStore, error) {
	models := []interface{}{
		&model.TradeModel{},
		&model.StopModel{},
		&model.LedgerEventModel{},
	}
	if err := db.AutoMigrate(models...); err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(2)
		sqlDB.SetMaxIdleConns(2)
	}
	return &SqliteStore{db: db}, nil
}

// Begin starts a transaction. SQLite serializes writers, so the transaction
// itself gives the read-modify-write isolation that row locking would
// provide on a server database; concurrent handlers for the same trade
// queue on busy_timeout instead of losing updates.
func (s *SqliteStore) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &gormUnitOfWork{tx: tx}, nil
}

// GormDB exposes the underlying handle for migrations and test seeding.
func (s *SqliteStore) GormDB() *gorm.DB {
	return s.db
}

func (s *SqliteStore) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormUnitOfWork struct {
	tx *gorm.DB
}

func (u *gormUnitOfWork) Trades() store.TradeRepository {
	return NewTradeRepo(u.tx)
}

func (u *gormUnitOfWork) Stops() store.StopRepository {
	return NewStopRepo(u.tx)
}

func (u *gormUnitOfWork) Ledger() store.LedgerRepository {
	return NewLedgerRepo(u.tx)
}

func (u *gormUnitOfWork) Commit() error {
	return u.tx.Commit().Error
}

func (u *gormUnitOfWork) Rollback() error {
	return u.tx.Rollback().Error
}
