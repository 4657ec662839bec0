package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService verifies credentials and issues role-carrying tokens
type AuthService interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error)
}

// DefaultAuthService implements AuthService
type DefaultAuthService struct {
	repo          repository.CredentialRepository
	jwtSecret     []byte
	tokenDuration time.Duration
}

// NewAuthService creates a new DefaultAuthService
func NewAuthService(repo repository.CredentialRepository, jwtSecret string, tokenDuration time.Duration) *DefaultAuthService {
	if tokenDuration <= 0 {
		tokenDuration = 24 * time.Hour
	}
	return &DefaultAuthService{
		repo:          repo,
		jwtSecret:     []byte(jwtSecret),
		tokenDuration: tokenDuration,
	}
}

// Login checks the password against the stored bcrypt hash. An unknown
// username yields ErrUserNotFound, a wrong password ErrInvalidCredentials.
func (s *DefaultAuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	cred, err := s.repo.GetCredentialByUsername(ctx, req.Username)
	if err != nil {
		return nil, fmt.Errorf("error getting credential: %w", err)
	}

	if cred == nil {
		return nil, ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.generateJWT(cred)
	if err != nil {
		return nil, fmt.Errorf("error generating token: %w", err)
	}

	return &models.LoginResponse{
		Message:   "login successful",
		Categoria: cred.Categoria,
		Token:     token,
		ExpiresIn: int(s.tokenDuration.Seconds()),
	}, nil
}

func (s *DefaultAuthService) generateJWT(cred *models.Credential) (string, error) {
	now := time.Now()

	claims := jwt.MapClaims{
		"sub":       cred.Username,
		"categoria": cred.Categoria,
		"exp":       now.Add(s.tokenDuration).Unix(),
		"iat":       now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// HashPassword returns the bcrypt hash of password
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}
	return string(hashed), nil
}
