package main

import (
	"context"
	"fmt"

	"github.com/Tsitronov/frutti-backend/internal/config"
	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/service"
	"github.com/Tsitronov/frutti-backend/internal/storage"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/jmoiron/sqlx"
)

// deps holds everything a command needs once config and database are up
type deps struct {
	cfg    *config.Config
	logger *utils.Logger
	db     *sqlx.DB
	blobs  storage.BlobStore
	svc    *service.Service
}

// bootstrap loads config, connects and migrates the database, and wires services
func bootstrap(ctx context.Context) (*deps, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := utils.NewLogger(cfg.Log.Level, cfg.Log.Format)

	db, err := config.SetupDatabase(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("set up database: %w", err)
	}

	blobs, err := newBlobStore(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	repo := repository.NewPostgresRepository(db)
	stores := service.EntityStores{
		Frutti:  repository.NewEntityTable[models.Frutto](db, repository.FruttiTable),
		Utenti:  repository.NewEntityTable[models.Utente](db, repository.UtentiTable),
		Appunti: repository.NewEntityTable[models.Appunto](db, repository.AppuntiTable),
	}
	svc := service.NewService(repo, stores, blobs, service.Options{
		JWTSecret:     cfg.Auth.JWTSecret,
		TokenDuration: cfg.Auth.TokenTTL,
		Photos: service.PhotoLimits{
			MaxCount: cfg.Photos.MaxCount,
			MaxBytes: cfg.Photos.MaxBytes,
		},
	}, logger)

	return &deps{cfg: cfg, logger: logger, db: db, blobs: blobs, svc: svc}, nil
}

func (a *deps) Close() {
	if err := a.db.Close(); err != nil {
		a.logger.Warn("closing database", "error", err)
	}
}

func newBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	switch cfg.Photos.Storage {
	case "minio":
		m := cfg.Photos.Minio
		store, err := storage.NewMinioStore(m.Endpoint, m.AccessKey, m.SecretKey, m.Bucket, m.UseSSL)
		if err != nil {
			return nil, fmt.Errorf("minio photo store: %w", err)
		}
		return store, nil
	default:
		store, err := storage.NewFileStore(cfg.Photos.Dir, "/uploads")
		if err != nil {
			return nil, fmt.Errorf("disk photo store: %w", err)
		}
		return store, nil
	}
}
