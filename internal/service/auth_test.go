package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository/repotest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func seedCredential(t *testing.T, repo *repotest.MemoryRepository, username, password, categoria string) {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	require.NoError(t, repo.CreateCredential(context.Background(), &models.Credential{
		Username:  username,
		Password:  hash,
		Categoria: categoria,
	}))
}

func TestLogin(t *testing.T) {
	repo := repotest.NewMemoryRepository()
	seedCredential(t, repo, "mario", "segreta", "admin")
	svc := NewAuthService(repo, testSecret, time.Hour)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Username: "mario", Password: "segreta"})
	require.NoError(t, err)
	assert.Equal(t, "admin", resp.Categoria)
	assert.Equal(t, 3600, resp.ExpiresIn)

	token, err := jwt.Parse(resp.Token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "mario", claims["sub"])
	assert.Equal(t, "admin", claims["categoria"])
}

func TestLogin_Failures(t *testing.T) {
	repo := repotest.NewMemoryRepository()
	seedCredential(t, repo, "mario", "segreta", "staff")
	svc := NewAuthService(repo, testSecret, 0)

	_, err := svc.Login(context.Background(), models.LoginRequest{Username: "luigi", Password: "segreta"})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "mario", Password: "sbagliata"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	repo.Err = errors.New("connection refused")
	_, err = svc.Login(context.Background(), models.LoginRequest{Username: "mario", Password: "segreta"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("segreta")
	require.NoError(t, err)
	assert.NotEqual(t, "segreta", hash)

	other, err := HashPassword("segreta")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "bcrypt salts every hash")
}
