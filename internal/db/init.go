package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
    id SERIAL PRIMARY KEY,
    email TEXT NOT NULL DEFAULT '',
    phone TEXT NOT NULL DEFAULT '',
    name TEXT NOT NULL,
    apellido TEXT NOT NULL DEFAULT '',
    typeu TEXT NOT NULL,
    status TEXT NOT NULL,
    password_hash BYTEA NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_idx ON accounts (email) WHERE email <> '';
CREATE UNIQUE INDEX IF NOT EXISTS accounts_phone_idx ON accounts (phone) WHERE phone <> '';

CREATE TABLE IF NOT EXISTS login_attempts (
    id BIGSERIAL PRIMARY KEY,
    login_input TEXT NOT NULL,
    success BOOLEAN NOT NULL,
    remote_addr TEXT NOT NULL DEFAULT '',
    attempted_at TIMESTAMPTZ NOT NULL
);
`

// InitPostgres opens dsn, checks the connection and creates the
// accounts and login_attempts tables when missing.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
