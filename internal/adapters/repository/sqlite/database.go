package sqlite

import (
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open opens the SQLite database at path and creates the schema. An empty
// path opens a private in-memory database.
func Open(path string) (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	if path == "" {
		dsn = fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer; serializing here keeps the
	// read-check-write transactions below race free.
	sqlDB.SetMaxOpenConns(1)

	for _, model := range []any{&userModel{}, &proposalModel{}, &allocationModel{}, &voteModel{}} {
		if err := db.AutoMigrate(model); err != nil {
			return nil, fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	return db, nil
}

func utc(t time.Time) time.Time {
	return t.UTC()
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
