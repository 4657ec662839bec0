package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/jmoiron/sqlx"
)

// CredentialRepository stores admin/password rows
type CredentialRepository interface {
	ListCredentials(ctx context.Context) ([]models.Credential, error)
	GetCredentialByUsername(ctx context.Context, username string) (*models.Credential, error)
	CreateCredential(ctx context.Context, cred *models.Credential) error
	UpdateCredential(ctx context.Context, id int64, username, passwordHash, categoria *string) (*models.Credential, error)
	DeleteCredential(ctx context.Context, id int64) error
}

// SnapshotRepository stores the single excel_data snapshot
type SnapshotRepository interface {
	ReplaceSnapshot(ctx context.Context, data string) (*models.Snapshot, error)
	LatestSnapshot(ctx context.Context) (*models.Snapshot, error)
}

// PhotoRepository stores photo records
type PhotoRepository interface {
	CountPhotos(ctx context.Context) (int, error)
	InsertPhotos(ctx context.Context, photos []models.Photo, maxCount int) ([]models.Photo, error)
	ListPhotos(ctx context.Context, categoria string) ([]models.Photo, error)
	DeletePhoto(ctx context.Context, id int64) (*models.Photo, error)
	PhotoFilenames(ctx context.Context) ([]string, error)
}

// Repository interface defines the methods that any repository implementation must satisfy
type Repository interface {
	CredentialRepository
	SnapshotRepository
	PhotoRepository
}

// PostgresRepository implements the Repository interface using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{
		db: db,
	}
}

// GetDB returns the underlying database connection
func (r *PostgresRepository) GetDB() *sqlx.DB {
	return r.db
}

// Credential repository methods
func (r *PostgresRepository) ListCredentials(ctx context.Context) ([]models.Credential, error) {
	query := `SELECT id, username, password, categoria, created_at FROM admin ORDER BY id ASC`

	creds := []models.Credential{}
	if err := r.db.SelectContext(ctx, &creds, query); err != nil {
		return nil, fmt.Errorf("list credentials: %w", err)
	}
	return creds, nil
}

func (r *PostgresRepository) GetCredentialByUsername(ctx context.Context, username string) (*models.Credential, error) {
	query := `SELECT id, username, password, categoria, created_at FROM admin WHERE username = $1`

	var cred models.Credential
	err := r.db.GetContext(ctx, &cred, query, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Credential not found
		}
		return nil, fmt.Errorf("get credential: %w", err)
	}

	return &cred, nil
}

func (r *PostgresRepository) CreateCredential(ctx context.Context, cred *models.Credential) error {
	query := `
		INSERT INTO admin (username, password, categoria)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(ctx, query, cred.Username, cred.Password, cred.Categoria).
		Scan(&cred.ID, &cred.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create credential: %w", err)
	}
	return nil
}

// UpdateCredential changes the non-nil fields of the row with the given id
func (r *PostgresRepository) UpdateCredential(
	ctx context.Context,
	id int64,
	username, passwordHash, categoria *string,
) (*models.Credential, error) {
	query := `
		UPDATE admin SET
			username = COALESCE($1, username),
			password = COALESCE($2, password),
			categoria = COALESCE($3, categoria)
		WHERE id = $4
		RETURNING id, username, password, categoria, created_at
	`

	var cred models.Credential
	err := r.db.GetContext(ctx, &cred, query, username, passwordHash, categoria, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("update credential: %w", err)
	}
	return &cred, nil
}

func (r *PostgresRepository) DeleteCredential(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Snapshot repository methods

// ReplaceSnapshot deletes every stored snapshot and inserts data as the only
// row, in one transaction so readers never observe an empty table.
func (r *PostgresRepository) ReplaceSnapshot(ctx context.Context, data string) (*models.Snapshot, error) {
	snap := &models.Snapshot{Data: data}

	err := withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM excel_data`); err != nil {
			return err
		}
		return tx.QueryRowxContext(ctx,
			`INSERT INTO excel_data (data) VALUES ($1) RETURNING id, uploaded_at`,
			data).Scan(&snap.ID, &snap.UploadedAt)
	})
	if err != nil {
		return nil, fmt.Errorf("replace snapshot: %w", err)
	}
	return snap, nil
}

func (r *PostgresRepository) LatestSnapshot(ctx context.Context) (*models.Snapshot, error) {
	query := `SELECT id, data, uploaded_at FROM excel_data ORDER BY uploaded_at DESC, id DESC LIMIT 1`

	var snap models.Snapshot
	err := r.db.GetContext(ctx, &snap, query)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No upload yet
		}
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return &snap, nil
}

// Photo repository methods
func (r *PostgresRepository) CountPhotos(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM photos`); err != nil {
		return 0, fmt.Errorf("count photos: %w", err)
	}
	return n, nil
}

// InsertPhotos inserts all photos or none. The table lock serializes concurrent
// uploads so the count check and the inserts see the same row count.
func (r *PostgresRepository) InsertPhotos(ctx context.Context, photos []models.Photo, maxCount int) ([]models.Photo, error) {
	out := make([]models.Photo, 0, len(photos))

	err := withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE photos IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return err
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM photos`); err != nil {
			return err
		}
		if count+len(photos) > maxCount {
			return ErrCapacityExceeded
		}

		for _, p := range photos {
			var saved models.Photo
			err := tx.GetContext(ctx, &saved, `
				INSERT INTO photos (filename, path, categoria)
				VALUES ($1, $2, $3)
				RETURNING id, filename, path, categoria, created_at`,
				p.Filename, p.Path, p.Categoria)
			if err != nil {
				return err
			}
			out = append(out, saved)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCapacityExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("insert photos: %w", err)
	}
	return out, nil
}

// ListPhotos returns photos newest first, filtered by categoria when it is not empty
func (r *PostgresRepository) ListPhotos(ctx context.Context, categoria string) ([]models.Photo, error) {
	query := `SELECT id, filename, path, categoria, created_at FROM photos`
	args := []interface{}{}

	if categoria != "" {
		query += ` WHERE categoria = $1`
		args = append(args, categoria)
	}

	query += ` ORDER BY created_at DESC, id DESC`

	photos := []models.Photo{}
	if err := r.db.SelectContext(ctx, &photos, query, args...); err != nil {
		return nil, fmt.Errorf("list photos: %w", err)
	}
	return photos, nil
}

// DeletePhoto removes the record and returns it so the caller can drop the file
func (r *PostgresRepository) DeletePhoto(ctx context.Context, id int64) (*models.Photo, error) {
	var p models.Photo
	err := r.db.GetContext(ctx, &p,
		`DELETE FROM photos WHERE id = $1 RETURNING id, filename, path, categoria, created_at`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("delete photo: %w", err)
	}
	return &p, nil
}

func (r *PostgresRepository) PhotoFilenames(ctx context.Context) ([]string, error) {
	names := []string{}
	if err := r.db.SelectContext(ctx, &names, `SELECT filename FROM photos`); err != nil {
		return nil, fmt.Errorf("photo filenames: %w", err)
	}
	return names, nil
}
