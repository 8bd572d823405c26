package main

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/markadai/taxidispatch/internal/config"
	"github.com/markadai/taxidispatch/internal/models"
	"github.com/markadai/taxidispatch/internal/repository"
	"github.com/markadai/taxidispatch/internal/service"
)

func TestSeedDemoAccounts(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryAuthRepository()
	svc := service.NewAuthService(repo)
	require.NoError(t, seedDemoAccounts(ctx, svc))

	resp, err := svc.Login(ctx, models.LoginCredentials{Identifier: "8095550101", Secret: demoPassword}, "")
	require.NoError(t, err)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.User)
	assert.Equal(t, "John", resp.User.Name)

	resp, err = svc.Login(ctx, models.LoginCredentials{Identifier: "jane@markadai.com", Secret: demoPassword}, "")
	require.NoError(t, err)
	assert.False(t, resp.Success)
	assert.Equal(t, service.MsgAccountInactive, *resp.Message)

	// a second seed collides with the first
	assert.ErrorIs(t, seedDemoAccounts(ctx, svc), repository.ErrDuplicateAccount)
}

func TestNewRepository_MemoryWithoutDSN(t *testing.T) {
	repo, err := newRepository(context.Background(), &config.ServerOptions{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryAuthRepository{}, repo)
}

func TestNewRedis(t *testing.T) {
	ctx := context.Background()

	client, err := newRedis(ctx, "")
	require.NoError(t, err)
	assert.Nil(t, client)

	_, err = newRedis(ctx, "not a url")
	assert.ErrorContains(t, err, "parse redis url")

	mr := miniredis.RunT(t)
	client, err = newRedis(ctx, "redis://"+mr.Addr())
	require.NoError(t, err)
	require.NotNil(t, client)
	client.Close()

	mr.Close()
	_, err = newRedis(ctx, "redis://"+mr.Addr())
	assert.ErrorContains(t, err, "ping redis")
}
