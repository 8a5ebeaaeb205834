package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/service"
)

// memFileRepo is an in-memory service.FileRepository with the same observable
// semantics as the Postgres-backed one, plus failure injection.
type memFileRepo struct {
	mu    sync.Mutex
	files map[uuid.UUID]*models.File

	// createErr, when set, is returned by Create instead of storing.
	createErr error
	// claimCollisions forces that many ClaimShareToken calls to report a
	// token collision before succeeding.
	claimCollisions int
	claimAttempts   int
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: make(map[uuid.UUID]*models.File)}
}

func copyFile(f *models.File) *models.File {
	c := *f
	if f.ShareToken != nil {
		token := *f.ShareToken
		c.ShareToken = &token
	}
	return &c
}

func (r *memFileRepo) Create(ctx context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return r.createErr
	}
	for _, f := range r.files {
		if f.OwnerID == file.OwnerID && f.ContentHash == file.ContentHash && f.Status == models.StatusActive {
			return service.ErrDuplicateContent
		}
	}
	r.files[file.ID] = copyFile(file)
	return nil
}

func (r *memFileRepo) FindActiveByID(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[fileID]
	if !ok || f.OwnerID != ownerID || f.Status != models.StatusActive {
		return nil, service.ErrNotFound
	}
	return copyFile(f), nil
}

func (r *memFileRepo) ActiveContentExists(ctx context.Context, ownerID uuid.UUID, contentHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.OwnerID == ownerID && f.ContentHash == contentHash && f.Status == models.StatusActive {
			return true, nil
		}
	}
	return false, nil
}

func (r *memFileRepo) List(ctx context.Context, ownerID uuid.UUID, q service.ListQuery) ([]models.File, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*models.File
	for _, f := range r.files {
		if f.OwnerID != ownerID || f.Status != models.StatusActive {
			continue
		}
		if q.Category != "" && f.Category != q.Category {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(f.OriginalName), strings.ToLower(q.Search)) {
			continue
		}
		matched = append(matched, f)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].UploadedAt.After(matched[j].UploadedAt)
	})

	total := int64(len(matched))
	start := (q.Page - 1) * q.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	page := make([]models.File, 0, end-start)
	for _, f := range matched[start:end] {
		page = append(page, *copyFile(f))
	}
	return page, total, nil
}

func (r *memFileRepo) UpdateFields(ctx context.Context, ownerID, fileID uuid.UUID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[fileID]
	if !ok || f.OwnerID != ownerID || f.Status != models.StatusActive {
		return service.ErrNotFound
	}
	for key, value := range fields {
		switch key {
		case "description":
			f.Description = value.(string)
		case "is_public":
			f.IsPublic = value.(bool)
		case "updated_at":
			f.UpdatedAt = value.(time.Time)
		}
	}
	return nil
}

func (r *memFileRepo) MarkDeleted(ctx context.Context, ownerID, fileID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[fileID]
	if !ok || f.OwnerID != ownerID || f.Status != models.StatusActive {
		return false, nil
	}
	f.Status = models.StatusDeleted
	return true, nil
}

func (r *memFileRepo) RecordAccess(ctx context.Context, fileID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	f, ok := r.files[fileID]
	if !ok {
		return service.ErrNotFound
	}
	f.AccessCount++
	return nil
}

func (r *memFileRepo) ClaimShareToken(ctx context.Context, fileID uuid.UUID, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.claimAttempts++
	if r.claimCollisions > 0 {
		r.claimCollisions--
		return "", service.ErrShareTokenCollision
	}
	for _, f := range r.files {
		if f.ShareToken != nil && *f.ShareToken == token {
			return "", service.ErrShareTokenCollision
		}
	}
	f, ok := r.files[fileID]
	if !ok {
		return "", service.ErrNotFound
	}
	// A token that is already set never changes; the earlier claim wins.
	if f.ShareToken != nil {
		return *f.ShareToken, nil
	}
	f.ShareToken = &token
	return token, nil
}

func (r *memFileRepo) FindActiveByShareToken(ctx context.Context, token string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.files {
		if f.ShareToken != nil && *f.ShareToken == token && f.Status == models.StatusActive {
			return copyFile(f), nil
		}
	}
	return nil, service.ErrNotFound
}

// get returns the stored record directly, for assertions on repository state.
func (r *memFileRepo) get(fileID uuid.UUID) *models.File {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[fileID]
	if !ok {
		return nil
	}
	return copyFile(f)
}

// memQuota is an in-memory service.QuotaLedger that floors at zero the way
// the SQL ledger does.
type memQuota struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*quotaEntry

	// uploadErr, when set, is returned by ApplyUpload without charging.
	uploadErr error
}

type quotaEntry struct {
	FilesCount  int64
	StorageUsed int64
}

func newMemQuota(users ...uuid.UUID) *memQuota {
	q := &memQuota{entries: make(map[uuid.UUID]*quotaEntry)}
	for _, id := range users {
		q.entries[id] = &quotaEntry{}
	}
	return q
}

func (q *memQuota) ApplyUpload(ctx context.Context, userID uuid.UUID, size int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.uploadErr != nil {
		return q.uploadErr
	}
	// Missing users are a silent no-op, matching the ledger's UPDATE.
	if e, ok := q.entries[userID]; ok {
		e.FilesCount++
		e.StorageUsed += size
	}
	return nil
}

func (q *memQuota) ApplyDelete(ctx context.Context, userID uuid.UUID, size int64) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if e, ok := q.entries[userID]; ok {
		e.FilesCount = max(e.FilesCount-1, 0)
		e.StorageUsed = max(e.StorageUsed-size, 0)
	}
	return nil
}

func (q *memQuota) entry(userID uuid.UUID) quotaEntry {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[userID]; ok {
		return *e
	}
	return quotaEntry{}
}

// memOwners is an in-memory service.OwnerDirectory.
type memOwners struct {
	users map[uuid.UUID]*models.User
}

func newMemOwners(users ...*models.User) *memOwners {
	o := &memOwners{users: make(map[uuid.UUID]*models.User)}
	for _, u := range users {
		o.users[u.ID] = u
	}
	return o
}

func (o *memOwners) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, ok := o.users[id]
	if !ok {
		return nil, errors.New("user not found")
	}
	return u, nil
}
