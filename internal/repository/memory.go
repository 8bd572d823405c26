package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/markadai/taxidispatch/internal/models"
	"github.com/markadai/taxidispatch/internal/service"
)

// ErrDuplicateAccount is returned when an email or phone is already taken.
var ErrDuplicateAccount = errors.New("account already exists")

// MemoryAuthRepository keeps accounts and attempts in memory. It backs the
// stub server when no database is configured.
type MemoryAuthRepository struct {
	mu       sync.RWMutex
	accounts []models.Account
	attempts []models.LoginAttempt
	nextID   int
}

// NewMemoryAuthRepository builds an empty in-memory store.
func NewMemoryAuthRepository() *MemoryAuthRepository {
	return &MemoryAuthRepository{nextID: 1}
}

func (r *MemoryAuthRepository) FindAccount(_ context.Context, login string) (models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, acc := range r.accounts {
		if (acc.Email != "" && acc.Email == login) || (acc.Phone != "" && acc.Phone == login) {
			return acc, nil
		}
	}
	return models.Account{}, service.ErrAccountNotFound
}

func (r *MemoryAuthRepository) CreateAccount(_ context.Context, acc *models.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if (acc.Email != "" && existing.Email == acc.Email) || (acc.Phone != "" && existing.Phone == acc.Phone) {
			return ErrDuplicateAccount
		}
	}
	acc.ID = r.nextID
	r.nextID++
	r.accounts = append(r.accounts, *acc)
	return nil
}

func (r *MemoryAuthRepository) RecordAttempt(_ context.Context, a models.LoginAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts = append(r.attempts, a)
	return nil
}

// Attempts returns a copy of the recorded attempts.
func (r *MemoryAuthRepository) Attempts() []models.LoginAttempt {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.LoginAttempt, len(r.attempts))
	copy(out, r.attempts)
	return out
}
