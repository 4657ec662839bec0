package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
)

const minPasswordLen = 4

// AdminService manages the credential table
type AdminService interface {
	List(ctx context.Context) ([]models.Credential, error)
	Create(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error)
	Update(ctx context.Context, id int64, req models.UpdateCredentialRequest) (*models.Credential, error)
	Delete(ctx context.Context, id int64) error
	// EnsureAdmin creates the credential unless the username already exists
	EnsureAdmin(ctx context.Context, username, password, categoria string) (bool, error)
}

// DefaultAdminService implements AdminService
type DefaultAdminService struct {
	repo repository.CredentialRepository
}

// NewAdminService creates a new DefaultAdminService
func NewAdminService(repo repository.CredentialRepository) *DefaultAdminService {
	return &DefaultAdminService{repo: repo}
}

func (s *DefaultAdminService) List(ctx context.Context) ([]models.Credential, error) {
	creds, err := s.repo.ListCredentials(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing credentials: %w", err)
	}
	return creds, nil
}

func (s *DefaultAdminService) Create(ctx context.Context, req models.CreateCredentialRequest) (*models.Credential, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || len(req.Password) < minPasswordLen || strings.TrimSpace(req.Categoria) == "" {
		return nil, ErrInvalidInput
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	cred := &models.Credential{
		Username:  username,
		Password:  hash,
		Categoria: req.Categoria,
	}
	if err := s.repo.CreateCredential(ctx, cred); err != nil {
		return nil, fmt.Errorf("error creating credential: %w", err)
	}
	return cred, nil
}

// Update changes only the fields present in req; a new password is rehashed
func (s *DefaultAdminService) Update(ctx context.Context, id int64, req models.UpdateCredentialRequest) (*models.Credential, error) {
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return nil, ErrInvalidInput
	}
	if req.Categoria != nil && strings.TrimSpace(*req.Categoria) == "" {
		return nil, ErrInvalidInput
	}

	var hash *string
	if req.Password != nil {
		if len(*req.Password) < minPasswordLen {
			return nil, ErrInvalidInput
		}
		h, err := HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		hash = &h
	}

	cred, err := s.repo.UpdateCredential(ctx, id, req.Username, hash, req.Categoria)
	if err != nil {
		return nil, fmt.Errorf("error updating credential: %w", err)
	}
	return cred, nil
}

func (s *DefaultAdminService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCredential(ctx, id); err != nil {
		return fmt.Errorf("error deleting credential: %w", err)
	}
	return nil
}

func (s *DefaultAdminService) EnsureAdmin(ctx context.Context, username, password, categoria string) (bool, error) {
	existing, err := s.repo.GetCredentialByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("error checking credential existence: %w", err)
	}
	if existing != nil {
		return false, nil
	}

	_, err = s.Create(ctx, models.CreateCredentialRequest{
		Username:  username,
		Password:  password,
		Categoria: categoria,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
