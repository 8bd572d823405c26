// Package service provides the login endpoint's business logic: credential
// checks against stored accounts, delegating persistence to an AuthRepository.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/markadai/taxidispatch/internal/models"
)

// Messages returned to clients in the "message" field.
const (
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccountInactive    = "Account inactive"
	MsgMissingFields      = "Login and password are required"
)

// statusActive is the only account status allowed to sign in.
const statusActive = "Active"

// ErrAccountNotFound is returned by repositories when no account matches.
var ErrAccountNotFound = errors.New("account not found")

// AuthRepository defines the persistence operations
// required by the authentication service.
type AuthRepository interface {
	// FindAccount returns the account whose email or phone equals login,
	// or ErrAccountNotFound.
	FindAccount(ctx context.Context, login string) (models.Account, error)
	// CreateAccount stores a new account and sets its ID.
	CreateAccount(ctx context.Context, acc *models.Account) error
	// RecordAttempt logs one login attempt.
	RecordAttempt(ctx context.Context, attempt models.LoginAttempt) error
}

// Service implements the login operation by delegating
// to an AuthRepository.
type Service struct {
	// repo performs the data-layer operations.
	repo AuthRepository
	now  func() time.Time
}

// NewAuthService constructs a new Service using the provided repository.
func NewAuthService(repo AuthRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Login checks the credentials and builds the response body. The returned
// error is reserved for storage failures; rejected credentials produce a
// response with Success false.
func (s *Service) Login(ctx context.Context, creds models.LoginCredentials, remoteAddr string) (models.LoginResponse, error) {
	login := strings.TrimSpace(creds.Identifier)
	attempt := models.LoginAttempt{
		LoginInput:  login,
		RemoteAddr:  remoteAddr,
		AttemptedAt: s.now().UTC(),
	}

	resp, err := s.check(ctx, login, creds.Secret)
	if err != nil {
		return models.LoginResponse{}, err
	}

	attempt.Success = resp.Success
	if err := s.repo.RecordAttempt(ctx, attempt); err != nil {
		return models.LoginResponse{}, fmt.Errorf("record attempt: %w", err)
	}
	return resp, nil
}

func (s *Service) check(ctx context.Context, login, password string) (models.LoginResponse, error) {
	if login == "" || password == "" {
		return rejected(MsgMissingFields), nil
	}

	acc, err := s.repo.FindAccount(ctx, login)
	if errors.Is(err, ErrAccountNotFound) {
		return rejected(MsgInvalidCredentials), nil
	}
	if err != nil {
		return models.LoginResponse{}, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte(password)); err != nil {
		return rejected(MsgInvalidCredentials), nil
	}
	if acc.Status != statusActive {
		return rejected(MsgAccountInactive), nil
	}

	u := acc.User
	return models.LoginResponse{Success: true, User: &u}, nil
}

// Register hashes password and stores a new account for user.
func (s *Service) Register(ctx context.Context, email, phone, password string, user models.User) (models.Account, error) {
	if email == "" && phone == "" {
		return models.Account{}, errors.New("email or phone is required")
	}
	if password == "" {
		return models.Account{}, errors.New("password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.Account{}, fmt.Errorf("hash password: %w", err)
	}
	acc := models.Account{User: user, Email: email, Phone: phone, PasswordHash: hash}
	if err := s.repo.CreateAccount(ctx, &acc); err != nil {
		return models.Account{}, fmt.Errorf("create account: %w", err)
	}
	return acc, nil
}

func rejected(msg string) models.LoginResponse {
	return models.LoginResponse{Success: false, Message: &msg}
}
