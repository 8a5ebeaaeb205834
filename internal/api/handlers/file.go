package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/vaultix/vaultix/internal/api/middleware"
	"github.com/vaultix/vaultix/internal/contentstore"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/service"
	"github.com/vaultix/vaultix/internal/utils"
)

const maxUploadSize = 100 << 20 // 100 MB

// FileHandler exposes the file lifecycle over HTTP. All identity comes from
// the auth middleware; the handler only translates requests and errors.
type FileHandler struct {
	files *service.FileService
}

func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// fileView is the JSON shape returned for a file the owner is looking at.
func fileView(f *models.File) map[string]any {
	return map[string]any{
		"id":             f.ID,
		"originalName":   f.OriginalName,
		"fileSize":       f.FileSize,
		"formattedSize":  utils.FormatBytes(f.FileSize),
		"mimeType":       f.MimeType,
		"category":       f.Category,
		"contentHash":    f.ContentHash,
		"retrievalUrl":   f.RetrievalURL,
		"description":    f.Description,
		"isPublic":       f.IsPublic,
		"accessCount":    f.AccessCount,
		"uploadedAt":     f.UploadedAt,
		"lastAccessedAt": f.LastAccessedAt,
		"updatedAt":      f.UpdatedAt,
	}
}

// POST /api/v1/files/upload
// Upload godoc
// @Summary Upload a file
// @Description Uploads a single file (≤100 MB) to the content-addressed store and records it
// @Tags Files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File to upload"
// @Param description formData string false "Optional description (≤500 chars)"
// @Success 201 {object} utils.Payload
// @Failure 400 {object} utils.Payload
// @Failure 409 {object} utils.Payload "Identical content already uploaded"
// @Router /api/v1/files/upload [post]
func (h *FileHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid file upload form",
		})
		return
	}

	src, header, err := r.FormFile("file")
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "No file uploaded. Please select a file.",
		})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Failed to read uploaded file",
		})
		return
	}

	file, err := h.files.Upload(r.Context(), ownerID, service.UploadInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Description:  r.FormValue("description"),
		Data:         data,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusCreated, utils.Payload{
		Success: true,
		Message: "File uploaded successfully",
		Data:    map[string]any{"file": fileView(file)},
	})
}

// GET /api/v1/files
// List godoc
// @Summary List the caller's files
// @Description Returns one page of the caller's active files, newest first
// @Tags Files
// @Produce json
// @Param page query int false "Page (1-indexed, default 1)"
// @Param limit query int false "Page size (default 10)"
// @Param category query string false "Filter by category"
// @Param search query string false "Substring match on the original name"
// @Success 200 {object} utils.Payload
// @Router /api/v1/files [get]
func (h *FileHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.UserID(r)
	if !ok {
		utils.JSONResponse(w, http.StatusUnauthorized, utils.Payload{
			Success: false,
			Message: "Unauthorized",
		})
		return
	}

	q := service.ListQuery{
		Page:     queryInt(r, "page", 1),
		PageSize: queryInt(r, "limit", service.DefaultPageSize),
		Search:   r.URL.Query().Get("search"),
	}
	if category := r.URL.Query().Get("category"); category != "" && category != "all" {
		q.Category = models.FileCategory(category)
	}

	files, pagination, err := h.files.List(r.Context(), ownerID, q)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	views := make([]map[string]any, 0, len(files))
	for i := range files {
		views = append(views, fileView(&files[i]))
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Files retrieved successfully",
		Data: map[string]any{
			"files":      views,
			"pagination": pagination,
		},
	})
}

// GET /api/v1/files/{id}
// Get godoc
// @Summary Get a single file
// @Description Returns file details; every read counts as an access
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [get]
func (h *FileHandler) Get(w http.ResponseWriter, r *http.Request) {
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

	file, err := h.files.Get(r.Context(), ownerID, fileID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File retrieved successfully",
		Data:    map[string]any{"file": fileView(file)},
	})
}

// PUT /api/v1/files/{id}
// Update godoc
// @Summary Update file details
// @Description Partial update of description and visibility
// @Tags Files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [put]
func (h *FileHandler) Update(w http.ResponseWriter, r *http.Request) {
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

	var input struct {
		Description *string `json:"description"`
		IsPublic    *bool   `json:"isPublic"`
	}
	if err := decodeJSON(r, &input); err != nil {
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: "Invalid input",
		})
		return
	}

	file, err := h.files.Update(r.Context(), ownerID, fileID, service.UpdateInput{
		Description: input.Description,
		IsPublic:    input.IsPublic,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File updated successfully",
		Data:    map[string]any{"file": fileView(file)},
	})
}

// DELETE /api/v1/files/{id}
// Delete godoc
// @Summary Delete a file
// @Description Unpins the content and soft-deletes the record
// @Tags Files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/v1/files/{id} [delete]
func (h *FileHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

	if err := h.files.Delete(r.Context(), ownerID, fileID); err != nil {
		writeServiceError(w, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "File deleted successfully",
	})
}

// decodeJSON parses a request body, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// queryInt parses an integer query parameter, falling back on absent or
// malformed values.
func queryInt(r *http.Request, key string, fallback int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

// writeServiceError maps the service error taxonomy onto HTTP responses.
// Internal details are logged, never sent to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var upstreamErr *service.UpstreamError

	switch {
	case errors.As(err, &validationErr):
		utils.JSONResponse(w, http.StatusBadRequest, utils.Payload{
			Success: false,
			Message: validationErr.Error(),
		})
	case errors.Is(err, service.ErrDuplicateContent):
		utils.JSONResponse(w, http.StatusConflict, utils.Payload{
			Success: false,
			Message: "You have already uploaded this file",
		})
	case errors.Is(err, service.ErrNotFound):
		utils.JSONResponse(w, http.StatusNotFound, utils.Payload{
			Success: false,
			Message: "File not found",
		})
	case errors.As(err, &upstreamErr):
		status := http.StatusBadGateway
		if upstreamErr.Reason() == contentstore.ReasonSize {
			status = http.StatusRequestEntityTooLarge
		}
		log.Printf("content store error: %v", err)
		utils.JSONResponse(w, status, utils.Payload{
			Success: false,
			Message: "Storage backend error, please try again later",
		})
	default:
		log.Printf("internal error: %v", err)
		utils.JSONResponse(w, http.StatusInternalServerError, utils.Payload{
			Success: false,
			Message: "Something went wrong",
		})
	}
}
