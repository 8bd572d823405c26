package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markadai/taxidispatch/internal/models"
	"github.com/markadai/taxidispatch/internal/service"
)

func TestMemoryAuthRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAuthRepository()

	a := &models.Account{User: models.User{Name: "John"}, Email: "john@x.com", Phone: "809"}
	require.NoError(t, repo.CreateAccount(ctx, a))
	assert.Equal(t, 1, a.ID)

	b := &models.Account{User: models.User{Name: "Jane"}, Phone: "810"}
	require.NoError(t, repo.CreateAccount(ctx, b))
	assert.Equal(t, 2, b.ID)

	assert.ErrorIs(t, repo.CreateAccount(ctx, &models.Account{Email: "john@x.com"}), ErrDuplicateAccount)
	assert.ErrorIs(t, repo.CreateAccount(ctx, &models.Account{Phone: "810"}), ErrDuplicateAccount)

	got, err := repo.FindAccount(ctx, "809")
	require.NoError(t, err)
	assert.Equal(t, "John", got.Name)

	got, err = repo.FindAccount(ctx, "810")
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)

	_, err = repo.FindAccount(ctx, "")
	assert.ErrorIs(t, err, service.ErrAccountNotFound)

	require.NoError(t, repo.RecordAttempt(ctx, models.LoginAttempt{LoginInput: "809", Success: true}))
	assert.Len(t, repo.Attempts(), 1)
}
