// Package repotest provides in-memory repositories for tests above the SQL layer.
package repotest

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/Tsitronov/frutti-backend/internal/models"
	"github.com/Tsitronov/frutti-backend/internal/repository"
)

// MemoryRepository implements repository.Repository with maps.
// Setting Err makes every call fail with it.
type MemoryRepository struct {
	mu sync.Mutex

	Err error

	creds    map[int64]models.Credential
	snapshot *models.Snapshot
	photos   map[int64]models.Photo
	nextID   int64
	clock    time.Time
}

// NewMemoryRepository creates an empty MemoryRepository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		creds:  map[int64]models.Credential{},
		photos: map[int64]models.Photo{},
		clock:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// tick returns strictly increasing timestamps so ordering by time is stable
func (m *MemoryRepository) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *MemoryRepository) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *MemoryRepository) ListCredentials(_ context.Context) ([]models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := make([]models.Credential, 0, len(m.creds))
	for _, c := range m.creds {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemoryRepository) GetCredentialByUsername(_ context.Context, username string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	for _, c := range m.creds {
		if c.Username == username {
			c := c
			return &c, nil
		}
	}
	return nil, nil
}

func (m *MemoryRepository) CreateCredential(_ context.Context, cred *models.Credential) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	for _, c := range m.creds {
		if c.Username == cred.Username {
			return repository.ErrDuplicate
		}
	}
	cred.ID = m.id()
	cred.CreatedAt = m.tick()
	m.creds[cred.ID] = *cred
	return nil
}

func (m *MemoryRepository) UpdateCredential(_ context.Context, id int64, username, passwordHash, categoria *string) (*models.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	c, ok := m.creds[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if username != nil {
		for _, other := range m.creds {
			if other.ID != id && other.Username == *username {
				return nil, repository.ErrDuplicate
			}
		}
		c.Username = *username
	}
	if passwordHash != nil {
		c.Password = *passwordHash
	}
	if categoria != nil {
		c.Categoria = *categoria
	}
	m.creds[id] = c
	return &c, nil
}

func (m *MemoryRepository) DeleteCredential(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if _, ok := m.creds[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.creds, id)
	return nil
}

func (m *MemoryRepository) ReplaceSnapshot(_ context.Context, data string) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	m.snapshot = &models.Snapshot{ID: m.id(), Data: data, UploadedAt: m.tick()}
	snap := *m.snapshot
	return &snap, nil
}

func (m *MemoryRepository) LatestSnapshot(_ context.Context) (*models.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	if m.snapshot == nil {
		return nil, nil
	}
	snap := *m.snapshot
	return &snap, nil
}

func (m *MemoryRepository) CountPhotos(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.photos), nil
}

func (m *MemoryRepository) InsertPhotos(_ context.Context, photos []models.Photo, maxCount int) ([]models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	if len(m.photos)+len(photos) > maxCount {
		return nil, repository.ErrCapacityExceeded
	}
	out := make([]models.Photo, 0, len(photos))
	for _, p := range photos {
		p.ID = m.id()
		p.CreatedAt = m.tick()
		m.photos[p.ID] = p
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryRepository) ListPhotos(_ context.Context, categoria string) ([]models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	out := []models.Photo{}
	for _, p := range m.photos {
		if categoria != "" && (p.Categoria == nil || *p.Categoria != categoria) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryRepository) DeletePhoto(_ context.Context, id int64) (*models.Photo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	p, ok := m.photos[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.photos, id)
	return &p, nil
}

func (m *MemoryRepository) PhotoFilenames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}

	names := make([]string, 0, len(m.photos))
	for _, p := range m.photos {
		names = append(names, p.Filename)
	}
	sort.Strings(names)
	return names, nil
}

// MemoryEntityStore implements repository.EntityStore. Records round-trip
// through JSON so the id and partial updates work for any entity type.
type MemoryEntityStore[T repository.Record] struct {
	mu     sync.Mutex
	Err    error
	rows   map[int64]map[string]any
	nextID int64
}

// NewMemoryEntityStore creates an empty MemoryEntityStore
func NewMemoryEntityStore[T repository.Record]() *MemoryEntityStore[T] {
	return &MemoryEntityStore[T]{rows: map[int64]map[string]any{}}
}

func (s *MemoryEntityStore[T]) List(_ context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	ids := make([]int64, 0, len(s.rows))
	for id := range s.rows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		rec, err := decode[T](s.rows[id])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *MemoryEntityStore[T]) Create(_ context.Context, rec T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	fields, err := encode(rec)
	if err != nil {
		return nil, err
	}
	s.nextID++
	fields["id"] = s.nextID
	s.rows[s.nextID] = fields

	out, err := decode[T](fields)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MemoryEntityStore[T]) Update(_ context.Context, id int64, rec T) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}

	stored, ok := s.rows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	fields, err := encode(rec)
	if err != nil {
		return nil, err
	}
	for k, v := range fields {
		if k == "id" || v == nil {
			continue
		}
		stored[k] = v
	}

	out, err := decode[T](stored)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *MemoryEntityStore[T]) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}

	if _, ok := s.rows[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.rows, id)
	return nil
}

func encode(v any) (map[string]any, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func decode[T any](fields map[string]any) (T, error) {
	var out T
	raw, err := json.Marshal(fields)
	if err != nil {
		return out, err
	}
	err = json.Unmarshal(raw, &out)
	return out, err
}

var (
	_ repository.Repository                 = (*MemoryRepository)(nil)
	_ repository.EntityStore[models.Frutto] = (*MemoryEntityStore[models.Frutto])(nil)
)
