package repositories

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/service"
	"gorm.io/gorm"
)

// FileRepository is the Postgres-backed implementation of
// service.FileRepository.
type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

func (r *FileRepository) Create(ctx context.Context, file *models.File) error {
	err := r.db.WithContext(ctx).Create(file).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// The partial unique index on (owner_id, content_hash) closes the
		// race window between the duplicate pre-check and the insert.
		return service.ErrDuplicateContent
	}
	return err
}

func (r *FileRepository) FindActiveByID(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("id = ? AND owner_id = ? AND status = ?", fileID, ownerID, models.StatusActive).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

func (r *FileRepository) ActiveContentExists(ctx context.Context, ownerID uuid.UUID, contentHash string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND content_hash = ? AND status = ?", ownerID, contentHash, models.StatusActive).
		Count(&count).Error
	return count > 0, err
}

func (r *FileRepository) List(ctx context.Context, ownerID uuid.UUID, q service.ListQuery) ([]models.File, int64, error) {
	tx := r.db.WithContext(ctx).Model(&models.File{}).
		Where("owner_id = ? AND status = ?", ownerID, models.StatusActive)

	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.Search != "" {
		tx = tx.Where("original_name ILIKE ?", "%"+escapeLike(q.Search)+"%")
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var files []models.File
	err := tx.Order("uploaded_at DESC").
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&files).Error
	return files, total, err
}

// UpdateFields writes to active, owner-matched records only, so an update
// racing a delete cannot touch a record that is already gone.
func (r *FileRepository) UpdateFields(ctx context.Context, ownerID, fileID uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND owner_id = ? AND status = ?", fileID, ownerID, models.StatusActive).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return service.ErrNotFound
	}
	return nil
}

// MarkDeleted soft-deletes the record and reports whether this call was the
// one that performed the transition. The status guard in the WHERE clause
// makes the delete effect-once under concurrency.
func (r *FileRepository) MarkDeleted(ctx context.Context, ownerID, fileID uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND owner_id = ? AND status = ?", fileID, ownerID, models.StatusActive).
		Updates(map[string]any{
			"status":     models.StatusDeleted,
			"updated_at": time.Now(),
		})
	return res.RowsAffected > 0, res.Error
}

// RecordAccess bumps the access counter in a single UPDATE so concurrent
// reads cannot lose counts.
func (r *FileRepository) RecordAccess(ctx context.Context, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ?", fileID).
		Updates(map[string]any{
			"access_count":     gorm.Expr("access_count + 1"),
			"last_accessed_at": time.Now(),
		}).Error
}

// ClaimShareToken assigns the token only if the record has none yet, so a
// token can never be overwritten once set. When a concurrent claim got there
// first, the token that won is returned instead.
func (r *FileRepository) ClaimShareToken(ctx context.Context, fileID uuid.UUID, token string) (string, error) {
	res := r.db.WithContext(ctx).Model(&models.File{}).
		Where("id = ? AND share_token IS NULL", fileID).
		Update("share_token", token)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return "", service.ErrShareTokenCollision
	}
	if res.Error != nil {
		return "", res.Error
	}
	if res.RowsAffected > 0 {
		return token, nil
	}

	// Lost the race to a concurrent share; hand back the winner.
	var file models.File
	err := r.db.WithContext(ctx).
		Select("share_token").
		Where("id = ?", fileID).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", service.ErrNotFound
	}
	if err != nil {
		return "", err
	}
	if file.ShareToken == nil {
		return "", service.ErrNotFound
	}
	return *file.ShareToken, nil
}

func (r *FileRepository) FindActiveByShareToken(ctx context.Context, token string) (*models.File, error) {
	var file models.File
	err := r.db.WithContext(ctx).
		Where("share_token = ? AND status = ?", token, models.StatusActive).
		First(&file).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, service.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// escapeLike neutralizes LIKE metacharacters in user-supplied search text.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}
