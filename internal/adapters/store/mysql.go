package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is the MySQL-backed implementation of core.Store.
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects using the DSN and ensures the schema exists.
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open MySQL connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect to MySQL: %w", err)
	}

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			password_hash VARCHAR(255) NOT NULL,
			created_at VARCHAR(40) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS spam_analyses (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			user_id BIGINT NOT NULL,
			text TEXT NOT NULL,
			is_spam BOOLEAN NOT NULL,
			confidence DOUBLE NOT NULL,
			indicators TEXT NOT NULL,
			flags TEXT NOT NULL,
			method VARCHAR(16) NOT NULL,
			analyzed_at VARCHAR(40) NOT NULL,
			INDEX idx_analyses_user (user_id, analyzed_at)
		)`,
	}
	for _, stmt := range ddl {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("store: create MySQL schema: %w", err)
		}
	}

	return &MySQLStore{sqlStore{db: db, logger: logger}}, nil
}
