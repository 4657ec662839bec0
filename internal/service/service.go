package service

import (
	"time"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/storage"
	"github.com/Tsitronov/frutti-backend/internal/utils"
)

// Service bundles every use case the HTTP layer needs
type Service struct {
	Auth      AuthService
	Admin     AdminService
	Frutti    EntityService[models.Frutto]
	Utenti    EntityService[models.Utente]
	Appunti   EntityService[models.Appunto]
	Snapshots SnapshotService
	Photos    PhotoService
}

// EntityStores are the three CRUD tables
type EntityStores struct {
	Frutti  repository.EntityStore[models.Frutto]
	Utenti  repository.EntityStore[models.Utente]
	Appunti repository.EntityStore[models.Appunto]
}

// Options carries the settings the services read from config
type Options struct {
	JWTSecret     string
	TokenDuration time.Duration
	Photos        PhotoLimits
}

// NewService wires the default implementations
func NewService(repo repository.Repository, stores EntityStores, blobs storage.BlobStore, opts Options, logger *utils.Logger) *Service {
	return &Service{
		Auth:      NewAuthService(repo, opts.JWTSecret, opts.TokenDuration),
		Admin:     NewAdminService(repo),
		Frutti:    NewEntityService("frutti", stores.Frutti),
		Utenti:    NewEntityService("utenti", stores.Utenti),
		Appunti:   NewEntityService("appunti", stores.Appunti),
		Snapshots: NewSnapshotService(repo),
		Photos:    NewPhotoService(repo, blobs, opts.Photos, logger),
	}
}
