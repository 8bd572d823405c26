package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/markadai/taxidispatch/internal/models"
)

type mockAuthRepo struct {
	FindAccountFunc   func(ctx context.Context, login string) (models.Account, error)
	CreateAccountFunc func(ctx context.Context, acc *models.Account) error
	RecordAttemptFunc func(ctx context.Context, attempt models.LoginAttempt) error

	attempts []models.LoginAttempt
}

func (m *mockAuthRepo) FindAccount(ctx context.Context, login string) (models.Account, error) {
	return m.FindAccountFunc(ctx, login)
}

func (m *mockAuthRepo) CreateAccount(ctx context.Context, acc *models.Account) error {
	return m.CreateAccountFunc(ctx, acc)
}

func (m *mockAuthRepo) RecordAttempt(ctx context.Context, attempt models.LoginAttempt) error {
	m.attempts = append(m.attempts, attempt)
	if m.RecordAttemptFunc != nil {
		return m.RecordAttemptFunc(ctx, attempt)
	}
	return nil
}

func hash(t *testing.T, pw string) []byte {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func accountRepo(t *testing.T, status string) *mockAuthRepo {
	acc := models.Account{
		User:         models.User{ID: 1, Name: "John", Apellido: "Doe", TypeU: "driver", Status: status},
		Email:        "john@x.com",
		Phone:        "8095550000",
		PasswordHash: hash(t, "pw"),
	}
	return &mockAuthRepo{
		FindAccountFunc: func(ctx context.Context, login string) (models.Account, error) {
			if login == acc.Email || login == acc.Phone {
				return acc, nil
			}
			return models.Account{}, ErrAccountNotFound
		},
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name     string
		status   string
		login    string
		password string
		wantOK   bool
		wantMsg  string
	}{
		{"email", "Active", "john@x.com", "pw", true, ""},
		{"phone", "Active", "8095550000", "pw", true, ""},
		{"trimmed login", "Active", "  john@x.com ", "pw", true, ""},
		{"wrong password", "Active", "john@x.com", "nope", false, MsgInvalidCredentials},
		{"unknown account", "Active", "who@x.com", "pw", false, MsgInvalidCredentials},
		{"inactive", "Inactive", "john@x.com", "pw", false, MsgAccountInactive},
		{"empty login", "Active", "", "pw", false, MsgMissingFields},
		{"empty password", "Active", "john@x.com", "", false, MsgMissingFields},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := accountRepo(t, tt.status)
			svc := NewAuthService(repo)
			fixed := time.Date(2024, 8, 12, 10, 0, 0, 0, time.UTC)
			svc.now = func() time.Time { return fixed }

			resp, err := svc.Login(context.Background(), models.LoginCredentials{Identifier: tt.login, Secret: tt.password}, "10.0.0.1")
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, resp.Success)
			if tt.wantOK {
				require.NotNil(t, resp.User)
				assert.Equal(t, "John", resp.User.Name)
				assert.Nil(t, resp.Message)
			} else {
				assert.Nil(t, resp.User)
				require.NotNil(t, resp.Message)
				assert.Equal(t, tt.wantMsg, *resp.Message)
			}

			require.Len(t, repo.attempts, 1)
			assert.Equal(t, tt.wantOK, repo.attempts[0].Success)
			assert.Equal(t, "10.0.0.1", repo.attempts[0].RemoteAddr)
			assert.Equal(t, fixed, repo.attempts[0].AttemptedAt)
		})
	}
}

func TestLogin_RepositoryErrors(t *testing.T) {
	dbErr := errors.New("db down")
	repo := &mockAuthRepo{
		FindAccountFunc: func(ctx context.Context, login string) (models.Account, error) {
			return models.Account{}, dbErr
		},
	}
	_, err := NewAuthService(repo).Login(context.Background(), models.LoginCredentials{Identifier: "a", Secret: "b"}, "")
	assert.ErrorIs(t, err, dbErr)
	assert.Empty(t, repo.attempts)

	repo = accountRepo(t, "Active")
	repo.RecordAttemptFunc = func(ctx context.Context, attempt models.LoginAttempt) error { return dbErr }
	_, err = NewAuthService(repo).Login(context.Background(), models.LoginCredentials{Identifier: "john@x.com", Secret: "pw"}, "")
	assert.ErrorIs(t, err, dbErr)
	assert.ErrorContains(t, err, "record attempt")
}

func TestRegister(t *testing.T) {
	var stored *models.Account
	repo := &mockAuthRepo{
		CreateAccountFunc: func(ctx context.Context, acc *models.Account) error {
			acc.ID = 12
			stored = acc
			return nil
		},
	}
	svc := NewAuthService(repo)

	acc, err := svc.Register(context.Background(), "ana@x.com", "", "secret", models.User{Name: "Ana", TypeU: "admin", Status: "Active"})
	require.NoError(t, err)
	assert.Equal(t, 12, acc.ID)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword(acc.PasswordHash, []byte("secret")))

	_, err = svc.Register(context.Background(), "", "", "secret", models.User{})
	assert.Error(t, err)
	_, err = svc.Register(context.Background(), "ana@x.com", "", "", models.User{})
	assert.Error(t, err)

	repo.CreateAccountFunc = func(ctx context.Context, acc *models.Account) error { return errors.New("duplicate") }
	_, err = svc.Register(context.Background(), "ana@x.com", "", "secret", models.User{})
	assert.ErrorContains(t, err, "create account: duplicate")
}
