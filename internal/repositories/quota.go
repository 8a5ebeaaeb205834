package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/models"
	"gorm.io/gorm"
)

// QuotaRepository maintains per-user storage counters. Every change is a
// single UPDATE statement, so concurrent uploads and deletes for the same
// user cannot lose increments the way a read-modify-write would.
type QuotaRepository struct {
	db *gorm.DB
}

func NewQuotaRepository(db *gorm.DB) *QuotaRepository {
	return &QuotaRepository{db: db}
}

// ApplyUpload charges one file of the given size to the user. A user that no
// longer exists matches zero rows, which counts as success: quota for a
// deleted account is moot.
func (r *QuotaRepository) ApplyUpload(ctx context.Context, userID uuid.UUID, size int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"files_count":  gorm.Expr("files_count + 1"),
			"storage_used": gorm.Expr("storage_used + ?", size),
		}).Error
}

// ApplyDelete reverses one upload. The GREATEST floors guard against
// double-reversal drift; the counters never go negative.
func (r *QuotaRepository) ApplyDelete(ctx context.Context, userID uuid.UUID, size int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]any{
			"files_count":  gorm.Expr("GREATEST(files_count - 1, 0)"),
			"storage_used": gorm.Expr("GREATEST(storage_used - ?, 0)", size),
		}).Error
}
