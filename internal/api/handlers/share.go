package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/api/middleware"
	"github.com/vaultix/vaultix/internal/utils"
)

// POST /api/v1/files/{id}/share
// Share godoc
// @Summary Generate a share link
// @Description Returns the file's share token, minting one on first use. Re-sharing never rotates the token.
// @Tags Share
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id}/share [post]
func (h *FileHandler) Share(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	fileID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "File not found",
		})
		return
	}

	link, err := h.files.GetOrCreateShareToken(r.Context(), ownerID, fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// The caller combines sharePath with its own base address.
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Share link generated successfully",
		Data: map[string]any{
			"shareToken":   link.Token,
			"sharePath":    link.SharePath,
			"retrievalUrl": link.RetrievalURL,
		},
	})
}

// GET /api/v1/files/shared/{token}
// AccessShared godoc
// @Summary Access a shared file
// @Description Public, unauthenticated access by share token. Possession of the token is the authorization.
// @Tags Share
// @Produce json
// @Param token path string true "Share token"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload "Unknown token, or the file was deleted"
// @Router /api/v1/files/shared/{token} [get]
func (h *FileHandler) AccessShared(w http.ResponseWriter, r *http.Request) {
	shared, err := h.files.ResolveShared(r.Context(), r.PathValue("token"))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	// Public view: the owner is reduced to a display name, and the owner ID
	// is never exposed.
	f := shared.File
	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File retrieved successfully",
		Data: map[string]any{
			"file": map[string]any{
				"originalName":  f.OriginalName,
				"fileSize":      f.FileSize,
				"formattedSize": utils.FormatBytes(f.FileSize),
				"mimeType":      f.MimeType,
				"category":      f.Category,
				"retrievalUrl":  f.RetrievalURL,
				"description":   f.Description,
				"uploadedAt":    f.UploadedAt,
				"owner":         shared.OwnerName,
			},
		},
	})
}
