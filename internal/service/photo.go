package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
	"github.com/Tsitronov/frutti-backend/internal/storage"
	"github.com/Tsitronov/frutti-backend/internal/utils"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// UploadFile is one member of a photo upload batch
type UploadFile struct {
	Name    string
	Size    int64
	Content io.ReadSeeker
}

// PhotoService stores uploaded images and their records
type PhotoService interface {
	Upload(ctx context.Context, files []UploadFile, categoria string) ([]models.Photo, error)
	List(ctx context.Context, categoria string) ([]models.Photo, error)
	Delete(ctx context.Context, id int64) error
	// Sweep removes blobs that no record points at and that are at least
	// minAge old, and returns their names
	Sweep(ctx context.Context, minAge time.Duration) ([]string, error)
}

// PhotoLimits bounds one upload
type PhotoLimits struct {
	MaxCount int
	MaxBytes int64
}

// DefaultPhotoService implements PhotoService
type DefaultPhotoService struct {
	repo   repository.PhotoRepository
	store  storage.BlobStore
	limits PhotoLimits
	logger *utils.Logger
	now    func() time.Time
}

var allowedImageTypes = []string{"image/jpeg", "image/png"}

// NewPhotoService creates a new DefaultPhotoService
func NewPhotoService(repo repository.PhotoRepository, store storage.BlobStore, limits PhotoLimits, logger *utils.Logger) *DefaultPhotoService {
	if limits.MaxCount <= 0 {
		limits.MaxCount = 5
	}
	if limits.MaxBytes <= 0 {
		limits.MaxBytes = 5 << 20
	}
	if logger == nil {
		logger = utils.NewLoggerTo(io.Discard, "error", "text")
	}
	return &DefaultPhotoService{
		repo:   repo,
		store:  store,
		limits: limits,
		logger: logger,
		now:    time.Now,
	}
}

type acceptedFile struct {
	file     UploadFile
	name     string
	mimeType string
}

// Upload validates the whole batch before writing anything. Rows are inserted
// in one capacity-checked transaction; blobs written for a failed batch are removed.
func (s *DefaultPhotoService) Upload(ctx context.Context, files []UploadFile, categoria string) ([]models.Photo, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if len(files) > s.limits.MaxCount {
		return nil, ErrTooManyFiles
	}

	accepted := make([]acceptedFile, 0, len(files))
	for _, f := range files {
		af, err := s.inspect(f)
		if err != nil {
			return nil, err
		}
		accepted = append(accepted, af)
	}

	count, err := s.repo.CountPhotos(ctx)
	if err != nil {
		return nil, fmt.Errorf("error counting photos: %w", err)
	}
	if count+len(accepted) > s.limits.MaxCount {
		return nil, ErrTooManyPhotos
	}

	var cat *string
	if categoria != "" {
		cat = &categoria
	}

	written := make([]string, 0, len(accepted))
	records := make([]models.Photo, 0, len(accepted))
	for _, af := range accepted {
		if err := s.store.Save(ctx, af.name, af.file.Content, af.file.Size, af.mimeType); err != nil {
			s.cleanup(ctx, written)
			return nil, fmt.Errorf("error saving photo: %w", err)
		}
		written = append(written, af.name)
		records = append(records, models.Photo{
			Filename:  af.name,
			Path:      s.store.Location(af.name),
			Categoria: cat,
		})
	}

	saved, err := s.repo.InsertPhotos(ctx, records, s.limits.MaxCount)
	if err != nil {
		s.cleanup(ctx, written)
		if errors.Is(err, repository.ErrCapacityExceeded) {
			return nil, ErrTooManyPhotos
		}
		return nil, fmt.Errorf("error inserting photos: %w", err)
	}

	s.logger.Info("photos uploaded", "count", len(saved), "categoria", categoria)
	return saved, nil
}

func (s *DefaultPhotoService) inspect(f UploadFile) (acceptedFile, error) {
	if f.Content == nil {
		return acceptedFile{}, ErrNoFiles
	}
	if f.Size > s.limits.MaxBytes {
		return acceptedFile{}, fmt.Errorf("%w: %s", ErrFileTooLarge, f.Name)
	}

	mtype, err := mimetype.DetectReader(f.Content)
	if err != nil {
		return acceptedFile{}, fmt.Errorf("error reading %s: %w", f.Name, err)
	}
	if _, err := f.Content.Seek(0, io.SeekStart); err != nil {
		return acceptedFile{}, fmt.Errorf("error rewinding %s: %w", f.Name, err)
	}
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return acceptedFile{}, fmt.Errorf("%w: %s is %s", ErrUnsupportedType, f.Name, mtype.String())
	}

	return acceptedFile{
		file:     f,
		name:     s.blobName(mtype.Extension()),
		mimeType: mtype.String(),
	}, nil
}

// blobName is <unix-millis>-<random><ext>
func (s *DefaultPhotoService) blobName(ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", s.now().UnixMilli(), random, ext)
}

func (s *DefaultPhotoService) cleanup(ctx context.Context, names []string) {
	for _, name := range names {
		if err := s.store.Remove(ctx, name); err != nil {
			s.logger.Warn("failed to remove blob of rejected upload", "file", name, "error", err)
		}
	}
}

func (s *DefaultPhotoService) List(ctx context.Context, categoria string) ([]models.Photo, error) {
	photos, err := s.repo.ListPhotos(ctx, categoria)
	if err != nil {
		return nil, fmt.Errorf("error listing photos: %w", err)
	}
	return photos, nil
}

// Delete drops the record first. A blob that cannot be removed is logged and
// left for Sweep.
func (s *DefaultPhotoService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return repository.ErrNotFound
	}

	photo, err := s.repo.DeletePhoto(ctx, id)
	if err != nil {
		return fmt.Errorf("error deleting photo: %w", err)
	}

	if err := s.store.Remove(ctx, photo.Filename); err != nil {
		s.logger.Warn("photo record deleted but file removal failed",
			"id", photo.ID, "file", photo.Filename, "error", err)
	}
	return nil
}

// blobTime reads the upload time encoded in a blob name by blobName
func blobTime(name string) (time.Time, bool) {
	prefix, _, found := strings.Cut(name, "-")
	if !found {
		return time.Time{}, false
	}
	ms, err := strconv.ParseInt(prefix, 10, 64)
	if err != nil || ms <= 0 {
		return time.Time{}, false
	}
	return time.UnixMilli(ms), true
}

// Sweep skips blobs younger than minAge: an upload writes its blobs before
// the rows commit. Names without a timestamp prefix are always eligible.
func (s *DefaultPhotoService) Sweep(ctx context.Context, minAge time.Duration) ([]string, error) {
	known, err := s.repo.PhotoFilenames(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing photo records: %w", err)
	}
	referenced := make(map[string]struct{}, len(known))
	for _, name := range known {
		referenced[name] = struct{}{}
	}

	blobs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing blobs: %w", err)
	}

	now := s.now()
	skipped := 0
	removed := []string{}
	for _, name := range blobs {
		if _, ok := referenced[name]; ok {
			continue
		}
		if at, ok := blobTime(name); ok && now.Sub(at) < minAge {
			skipped++
			continue
		}
		if err := s.store.Remove(ctx, name); err != nil {
			s.logger.Warn("failed to remove orphan blob", "file", name, "error", err)
			continue
		}
		removed = append(removed, name)
	}

	if len(removed) > 0 || skipped > 0 {
		s.logger.Info("orphan photo sweep finished", "removed", len(removed), "skipped_recent", skipped)
	}
	return removed, nil
}
