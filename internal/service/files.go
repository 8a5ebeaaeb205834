// Package service implements the file lifecycle: upload, access accounting,
// listing, sharing, soft deletion, and the storage quota bookkeeping that
// goes with each of them.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/contentstore"
	"github.com/vaultix/vaultix/internal/models"
)

const (
	maxDescriptionLength = 500

	// DefaultPageSize is used when a caller does not specify a page size.
	DefaultPageSize = 10
)

// blockedExtensions are rejected at upload time.
var blockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".com": true, ".cmd": true,
	".scr": true, ".pif": true, ".app": true, ".msi": true,
}

// ListQuery selects and pages through an owner's active files.
type ListQuery struct {
	Page     int // 1-indexed
	PageSize int
	Category models.FileCategory // exact match when non-empty
	Search   string              // case-insensitive substring on the original name
}

// Pagination describes the filtered result set a ListQuery selected.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalFiles  int64 `json:"totalFiles"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// FileRepository is the persistence capability set the file service needs.
// Implementations translate storage-level errors into the package's error
// taxonomy: ErrNotFound for missing rows, ErrDuplicateContent for the
// (owner, hash) active-uniqueness constraint, ErrShareTokenCollision for the
// share token uniqueness constraint.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error
	FindActiveByID(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error)
	ActiveContentExists(ctx context.Context, ownerID uuid.UUID, contentHash string) (bool, error)
	List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]models.File, int64, error)
	// UpdateFields writes to an active, owner-matched record; ErrNotFound
	// when no such record exists anymore.
	UpdateFields(ctx context.Context, ownerID, fileID uuid.UUID, fields map[string]any) error
	MarkDeleted(ctx context.Context, ownerID, fileID uuid.UUID) (bool, error)
	RecordAccess(ctx context.Context, fileID uuid.UUID) error
	// ClaimShareToken assigns the token only if the record has none and
	// returns the token that ended up on the record, which is the existing
	// one when a concurrent claim won.
	ClaimShareToken(ctx context.Context, fileID uuid.UUID, token string) (string, error)
	FindActiveByShareToken(ctx context.Context, token string) (*models.File, error)
}

// QuotaLedger applies and reverses a user's storage accounting. Both calls
// must be atomic per user under concurrency, and must be a no-op when the
// user no longer exists.
type QuotaLedger interface {
	ApplyUpload(ctx context.Context, userID uuid.UUID, size int64) error
	ApplyDelete(ctx context.Context, userID uuid.UUID, size int64) error
}

// OwnerDirectory resolves owner display names for public share views.
type OwnerDirectory interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// FileService owns the file lifecycle. The HTTP layer hands it an
// authenticated owner ID with every call; it never derives identity itself.
type FileService struct {
	files      FileRepository
	quota      QuotaLedger
	owners     OwnerDirectory
	store      contentstore.Store
	pinTimeout time.Duration
}

func NewFileService(files FileRepository, quota QuotaLedger, owners OwnerDirectory, store contentstore.Store, pinTimeout time.Duration) *FileService {
	return &FileService{
		files:      files,
		quota:      quota,
		owners:     owners,
		store:      store,
		pinTimeout: pinTimeout,
	}
}

// UploadInput carries everything the HTTP layer parsed out of an upload
// request.
type UploadInput struct {
	OriginalName string
	MimeType     string
	Description  string
	Data         []byte
}

// Upload pins the bytes, records the file, and charges the owner's quota,
// in that order. A failed pin leaves no record and no quota charge; a
// duplicate leaves quota untouched and the already-pinned bytes in place.
func (s *FileService) Upload(ctx context.Context, ownerID uuid.UUID, in UploadInput) (*models.File, error) {
	name := strings.TrimSpace(in.OriginalName)
	if name == "" {
		return nil, &ValidationError{Field: "originalName", Reason: "must not be empty"}
	}
	if len(in.Data) == 0 {
		return nil, &ValidationError{Field: "file", Reason: "must not be empty"}
	}
	if blockedExtensions[strings.ToLower(filepath.Ext(name))] {
		return nil, &ValidationError{Field: "file", Reason: "file type not allowed"}
	}
	description := strings.TrimSpace(in.Description)
	if len(description) > maxDescriptionLength {
		return nil, &ValidationError{Field: "description", Reason: "cannot exceed 500 characters"}
	}

	// Pin before committing anything locally: content that failed to pin is
	// never charged, and a cancelled pin leaves no trace.
	pinCtx, cancel := context.WithTimeout(ctx, s.pinTimeout)
	defer cancel()
	pinned, err := s.store.Pin(pinCtx, in.Data, name, in.MimeType)
	if err != nil {
		return nil, &UpstreamError{Op: "pin", Err: err}
	}

	exists, err := s.files.ActiveContentExists(ctx, ownerID, pinned.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("check duplicate content: %w", err)
	}
	if exists {
		// The pinned bytes back the owner's existing record; nothing to undo.
		return nil, ErrDuplicateContent
	}

	now := time.Now()
	file := &models.File{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		OriginalName:   name,
		FileSize:       int64(len(in.Data)),
		MimeType:       in.MimeType,
		ContentHash:    pinned.ContentHash,
		RetrievalURL:   pinned.RetrievalURL,
		Category:       models.CategoryForMimeType(in.MimeType),
		Description:    description,
		Status:         models.StatusActive,
		UploadedAt:     now,
		LastAccessedAt: now,
		UpdatedAt:      now,
	}

	if err := s.files.Create(ctx, file); err != nil {
		if errors.Is(err, ErrDuplicateContent) {
			// Lost the race to a concurrent upload of the same content.
			return nil, ErrDuplicateContent
		}
		// The bytes are pinned but no record references them; release them
		// so the store is not left holding unaccounted content.
		unpinCtx, unpinCancel := context.WithTimeout(context.WithoutCancel(ctx), s.pinTimeout)
		defer unpinCancel()
		if unpinErr := s.store.Unpin(unpinCtx, pinned.ContentHash); unpinErr != nil {
			log.Printf("failed to release orphaned pin %s: %v", pinned.ContentHash, unpinErr)
		}
		return nil, fmt.Errorf("persist file record: %w", err)
	}

	if err := s.quota.ApplyUpload(ctx, ownerID, file.FileSize); err != nil {
		// The record exists but was never charged. Surface the drift loudly
		// so it can be reconciled against the ledger.
		log.Printf("uncharged upload: user %s file %s (%d bytes): %v", ownerID, file.ID, file.FileSize, err)
		return nil, fmt.Errorf("apply upload quota: %w", err)
	}

	return file, nil
}

// Get returns an active, owner-matched file. Every successful read counts as
// an access.
func (s *FileService) Get(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	file, err := s.files.FindActiveByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if err := s.files.RecordAccess(ctx, file.ID); err != nil {
		return nil, fmt.Errorf("record access: %w", err)
	}
	file.AccessCount++
	file.LastAccessedAt = time.Now()

	return file, nil
}

// List returns one page of the owner's active files, newest first, with
// pagination metadata for the filtered set.
func (s *FileService) List(ctx context.Context, ownerID uuid.UUID, q ListQuery) ([]models.File, Pagination, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}

	files, total, err := s.files.List(ctx, ownerID, q)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list files: %w", err)
	}

	return files, paginate(q.Page, q.PageSize, total), nil
}

// paginate computes the pagination block for a filtered result set. An empty
// set has zero pages and neither neighbor.
func paginate(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalFiles:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1 && totalPages > 0,
	}
}

// UpdateInput is a partial update: nil fields are left unchanged.
type UpdateInput struct {
	Description *string
	IsPublic    *bool
}

// Update changes the mutable fields of an active, owner-matched file.
func (s *FileService) Update(ctx context.Context, ownerID, fileID uuid.UUID, in UpdateInput) (*models.File, error) {
	file, err := s.files.FindActiveByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Description != nil {
		description := strings.TrimSpace(*in.Description)
		if len(description) > maxDescriptionLength {
			return nil, &ValidationError{Field: "description", Reason: "cannot exceed 500 characters"}
		}
		fields["description"] = description
		file.Description = description
	}
	if in.IsPublic != nil {
		fields["is_public"] = *in.IsPublic
		file.IsPublic = *in.IsPublic
	}
	if len(fields) == 0 {
		return file, nil
	}

	now := time.Now()
	fields["updated_at"] = now
	file.UpdatedAt = now

	if err := s.files.UpdateFields(ctx, ownerID, file.ID, fields); err != nil {
		if errors.Is(err, ErrNotFound) {
			// Deleted between the read and the write.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update file: %w", err)
	}
	return file, nil
}

// Delete unpins the content, soft-deletes the record, and reverses the
// owner's quota, in that order. If the unpin fails the record stays active
// so quota never drifts from content that is still stored. The soft delete
// is effect-once: a concurrent delete that loses the race gets ErrNotFound
// and causes no second quota reversal.
func (s *FileService) Delete(ctx context.Context, ownerID, fileID uuid.UUID) error {
	file, err := s.files.FindActiveByID(ctx, ownerID, fileID)
	if err != nil {
		return err
	}

	unpinCtx, cancel := context.WithTimeout(ctx, s.pinTimeout)
	defer cancel()
	if err := s.store.Unpin(unpinCtx, file.ContentHash); err != nil {
		return &UpstreamError{Op: "unpin", Err: err}
	}

	deleted, err := s.files.MarkDeleted(ctx, ownerID, fileID)
	if err != nil {
		return fmt.Errorf("mark file deleted: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}

	if err := s.quota.ApplyDelete(ctx, ownerID, file.FileSize); err != nil {
		return fmt.Errorf("apply delete quota: %w", err)
	}
	return nil
}
