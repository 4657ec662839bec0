package service

import (
	"context"
	"fmt"

	"github.com/Tsitronov/frutti-backend/internal/repository"
)

// EntityService is the CRUD surface of one entity table
type EntityService[T repository.Record] interface {
	Name() string
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (*T, error)
	Update(ctx context.Context, id int64, rec T) (*T, error)
	Delete(ctx context.Context, id int64) error
}

// DefaultEntityService implements EntityService over a repository.EntityStore
type DefaultEntityService[T repository.Record] struct {
	name  string
	store repository.EntityStore[T]
}

// NewEntityService creates a new DefaultEntityService
func NewEntityService[T repository.Record](name string, store repository.EntityStore[T]) *DefaultEntityService[T] {
	return &DefaultEntityService[T]{name: name, store: store}
}

func (s *DefaultEntityService[T]) Name() string {
	return s.name
}

func (s *DefaultEntityService[T]) List(ctx context.Context) ([]T, error) {
	rows, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", s.name, err)
	}
	return rows, nil
}

func (s *DefaultEntityService[T]) Create(ctx context.Context, rec T) (*T, error) {
	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("error creating %s: %w", s.name, err)
	}
	return created, nil
}

// Update never reaches the store for ids that cannot exist
func (s *DefaultEntityService[T]) Update(ctx context.Context, id int64, rec T) (*T, error) {
	if id <= 0 {
		return nil, repository.ErrNotFound
	}
	updated, err := s.store.Update(ctx, id, rec)
	if err != nil {
		return nil, fmt.Errorf("error updating %s: %w", s.name, err)
	}
	return updated, nil
}

func (s *DefaultEntityService[T]) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return repository.ErrNotFound
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("error deleting %s: %w", s.name, err)
	}
	return nil
}
