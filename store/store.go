// Package store persists the lobby and game domain in Postgres. Every API
// request runs inside one repeatable-read transaction; mutation paths load
// their aggregate under a row lock so concurrent operations on the same
// gameroom or game serialize instead of interleaving.
package store

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"tuicubserv/apperr"
)

// Postgres error codes that signal a lost race with a concurrent
// transaction.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

type Store struct {
	db *gorm.DB
}

// Open connects to the database and migrates the schema.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&dbUser{}, &dbUserToken{}, &dbGameroom{}, &dbGame{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Tx is a single request's transaction. All repository methods hang off it.
type Tx struct {
	db *gorm.DB
}

// Transaction runs fn inside a repeatable-read transaction, committing on
// nil and rolling back on error. Serialization failures surface as the
// user-facing conflict error.
func (s *Store) Transaction(fn func(tx *Tx) error) error {
	err := s.db.Transaction(func(db *gorm.DB) error {
		return fn(&Tx{db: db})
	}, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	return translateError(err)
}

// translateError maps driver-level failures onto the application error
// space. Domain errors pass through untouched.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected {
			return apperr.Conflict()
		}
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound()
	}
	return err
}
