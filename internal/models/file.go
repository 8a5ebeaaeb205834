package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// FileCategory groups files by MIME type for listing filters.
type FileCategory string

const (
	CategoryImage    FileCategory = "image"
	CategoryDocument FileCategory = "document"
	CategoryVideo    FileCategory = "video"
	CategoryAudio    FileCategory = "audio"
	CategoryArchive  FileCategory = "archive"
	CategoryOther    FileCategory = "other"
)

// FileStatus is the lifecycle state of a file record. Records only ever move
// from active to deleted; there is no undelete and no hard delete.
type FileStatus string

const (
	StatusActive     FileStatus = "active"
	StatusDeleted    FileStatus = "deleted"
	StatusProcessing FileStatus = "processing"
)

type File struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	OwnerID uuid.UUID `json:"ownerId" gorm:"type:uuid;not null;index:idx_files_owner_uploaded,priority:1;uniqueIndex:idx_files_owner_hash,priority:1"`

	OriginalName string `json:"originalName" gorm:"not null"`
	FileSize     int64  `json:"fileSize" gorm:"not null"` // bytes
	MimeType     string `json:"mimeType" gorm:"not null"`

	// ContentHash is assigned by the content store, never by the client.
	// At most one active record per (owner, hash); deleted records do not
	// block re-uploading the same content.
	ContentHash  string `json:"contentHash" gorm:"not null;index;uniqueIndex:idx_files_owner_hash,priority:2,where:status = 'active'"`
	RetrievalURL string `json:"retrievalUrl" gorm:"not null"`

	// Category is derived from the MIME type once at creation and never
	// recomputed, even if the MIME type later proves wrong.
	Category FileCategory `json:"category" gorm:"not null;default:other"`

	Description string `json:"description"`
	IsPublic    bool   `json:"isPublic" gorm:"default:false"`
	AccessCount int64  `json:"accessCount" gorm:"not null;default:0"`

	// ShareToken is minted lazily on the first share request and is immutable
	// for the life of the record.
	ShareToken *string `json:"shareToken,omitempty" gorm:"uniqueIndex"`

	Status         FileStatus `json:"status" gorm:"not null;default:active;index"`
	UploadedAt     time.Time  `json:"uploadedAt" gorm:"autoCreateTime;index:idx_files_owner_uploaded,priority:2,sort:desc"`
	LastAccessedAt time.Time  `json:"lastAccessedAt"`
	UpdatedAt      time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}

// CategoryForMimeType derives a file category from a MIME type. Prefix
// matches take precedence over substring matches.
func CategoryForMimeType(mimeType string) FileCategory {
	mt := strings.ToLower(mimeType)

	switch {
	case strings.HasPrefix(mt, "image/"):
		return CategoryImage
	case strings.HasPrefix(mt, "video/"):
		return CategoryVideo
	case strings.HasPrefix(mt, "audio/"):
		return CategoryAudio
	}

	for _, kw := range []string{"pdf", "document", "text", "spreadsheet", "presentation"} {
		if strings.Contains(mt, kw) {
			return CategoryDocument
		}
	}
	for _, kw := range []string{"zip", "rar", "tar", "gz"} {
		if strings.Contains(mt, kw) {
			return CategoryArchive
		}
	}
	return CategoryOther
}
