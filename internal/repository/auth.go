// Package repository provides persistence implementations for the login
// service: PostgreSQL for deployments and an in-memory store for development.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/markadai/taxidispatch/internal/models"
	"github.com/markadai/taxidispatch/internal/service"
)

// PostgresAuthRepository implements account lookup and attempt logging using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// FindAccount looks an account up by email or phone.
// It returns service.ErrAccountNotFound when nothing matches.
func (r *PostgresAuthRepository) FindAccount(ctx context.Context, login string) (models.Account, error) {
	var acc models.Account
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, email, phone, name, apellido, typeu, status, password_hash
		  FROM accounts
		 WHERE email = $1 OR phone = $1
		 LIMIT 1
	`, login).Scan(
		&acc.ID, &acc.Email, &acc.Phone, &acc.Name, &acc.Apellido,
		&acc.TypeU, &acc.Status, &acc.PasswordHash,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, service.ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, fmt.Errorf("FindAccount: %w", err)
	}
	return acc, nil
}

// CreateAccount inserts acc and sets acc.ID from the generated key.
func (r *PostgresAuthRepository) CreateAccount(ctx context.Context, acc *models.Account) error {
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO accounts (email, phone, name, apellido, typeu, status, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`, acc.Email, acc.Phone, acc.Name, acc.Apellido, acc.TypeU, acc.Status, acc.PasswordHash).Scan(&acc.ID)
	if err != nil {
		return fmt.Errorf("CreateAccount: %w", err)
	}
	return nil
}

// RecordAttempt appends a row to login_attempts.
func (r *PostgresAuthRepository) RecordAttempt(ctx context.Context, a models.LoginAttempt) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO login_attempts (login_input, success, remote_addr, attempted_at)
		VALUES ($1, $2, $3, $4)
	`, a.LoginInput, a.Success, a.RemoteAddr, a.AttemptedAt)
	if err != nil {
		return fmt.Errorf("RecordAttempt: %w", err)
	}
	return nil
}
