package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/utils"
)

const (
	shareTokenBytes  = 32 // 256 bits of randomness, hex-encoded
	maxTokenAttempts = 5
)

// ShareLink is what an owner gets back from sharing a file. SharePath is a
// path template; the HTTP layer combines it with its own base address.
type ShareLink struct {
	Token        string `json:"shareToken"`
	SharePath    string `json:"sharePath"`
	RetrievalURL string `json:"retrievalUrl"`
}

// SharedFile is the public view of a shared record. The owner is reduced to
// a display name; the owner ID is never exposed.
type SharedFile struct {
	File      *models.File
	OwnerName string
}

// GetOrCreateShareToken returns the file's share token, minting one on the
// first request. Re-sharing never rotates the token.
func (s *FileService) GetOrCreateShareToken(ctx context.Context, ownerID, fileID uuid.UUID) (*ShareLink, error) {
	file, err := s.files.FindActiveByID(ctx, ownerID, fileID)
	if err != nil {
		return nil, err
	}

	if file.ShareToken != nil {
		return shareLink(*file.ShareToken, file), nil
	}

	for range maxTokenAttempts {
		token, err := utils.GenerateShareToken(shareTokenBytes)
		if err != nil {
			return nil, fmt.Errorf("generate share token: %w", err)
		}

		claimed, err := s.files.ClaimShareToken(ctx, file.ID, token)
		if err == nil {
			// claimed may differ from token when a concurrent share won the
			// claim; both callers end up with the one token on the record.
			file.ShareToken = &claimed
			return shareLink(claimed, file), nil
		}
		if !errors.Is(err, ErrShareTokenCollision) {
			return nil, fmt.Errorf("assign share token: %w", err)
		}
		// Astronomically unlikely with 256-bit tokens; regenerate.
	}
	return nil, errors.New("could not mint a unique share token")
}

func shareLink(token string, file *models.File) *ShareLink {
	return &ShareLink{
		Token:        token,
		SharePath:    "/api/v1/files/shared/" + token,
		RetrievalURL: file.RetrievalURL,
	}
}

// ResolveShared resolves a share token without any identity check:
// possession of the token is the authorization. Deleted files no longer
// resolve, so deletion implicitly revokes sharing.
func (s *FileService) ResolveShared(ctx context.Context, token string) (*SharedFile, error) {
	if token == "" {
		return nil, ErrNotFound
	}

	file, err := s.files.FindActiveByShareToken(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := s.files.RecordAccess(ctx, file.ID); err != nil {
		return nil, fmt.Errorf("record access: %w", err)
	}
	file.AccessCount++
	file.LastAccessedAt = time.Now()

	shared := &SharedFile{File: file}
	if owner, err := s.owners.FindByID(ctx, file.OwnerID); err == nil {
		shared.OwnerName = owner.Name
	}
	return shared, nil
}
