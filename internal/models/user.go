package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	Name     string    `json:"name" gorm:"not null"`
	Email    string    `json:"email" gorm:"uniqueIndex;not null"`
	Password string    `json:"-"` // empty for OAuth-only accounts

	// Storage counters. Mutated only through the quota ledger so concurrent
	// uploads and deletes for the same user cannot lose updates.
	FilesCount  int64 `json:"filesCount" gorm:"not null;default:0"`
	StorageUsed int64 `json:"storageUsed" gorm:"not null;default:0"` // bytes

	LastLogin *time.Time `json:"lastLogin,omitempty"`
	CreatedAt time.Time  `json:"createdAt" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updatedAt" gorm:"autoUpdateTime"`
}
