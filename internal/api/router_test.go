package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vaultix/vaultix/internal/api"
	"github.com/vaultix/vaultix/internal/api/handlers"
	"github.com/vaultix/vaultix/internal/config"
	"github.com/vaultix/vaultix/internal/contentstore"
	"github.com/vaultix/vaultix/internal/models"
	"github.com/vaultix/vaultix/internal/repositories"
	"github.com/vaultix/vaultix/internal/service"
)

type stubFileRepo struct{}

func (stubFileRepo) Create(ctx context.Context, file *models.File) error { return nil }
func (stubFileRepo) FindActiveByID(ctx context.Context, ownerID, fileID uuid.UUID) (*models.File, error) {
	return nil, service.ErrNotFound
}
func (stubFileRepo) ActiveContentExists(ctx context.Context, ownerID uuid.UUID, contentHash string) (bool, error) {
	return false, nil
}
func (stubFileRepo) List(ctx context.Context, ownerID uuid.UUID, q service.ListQuery) ([]models.File, int64, error) {
	return nil, 0, nil
}
func (stubFileRepo) UpdateFields(ctx context.Context, ownerID, fileID uuid.UUID, fields map[string]any) error {
	return service.ErrNotFound
}
func (stubFileRepo) MarkDeleted(ctx context.Context, ownerID, fileID uuid.UUID) (bool, error) {
	return false, nil
}
func (stubFileRepo) RecordAccess(ctx context.Context, fileID uuid.UUID) error { return nil }
func (stubFileRepo) ClaimShareToken(ctx context.Context, fileID uuid.UUID, token string) (string, error) {
	return "", service.ErrNotFound
}
func (stubFileRepo) FindActiveByShareToken(ctx context.Context, token string) (*models.File, error) {
	return nil, service.ErrNotFound
}

type stubQuota struct{}

func (stubQuota) ApplyUpload(ctx context.Context, userID uuid.UUID, size int64) error { return nil }
func (stubQuota) ApplyDelete(ctx context.Context, userID uuid.UUID, size int64) error { return nil }

type stubOwners struct{}

func (stubOwners) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}

type stubUsers struct{}

func (stubUsers) Create(ctx context.Context, user *models.User) error { return nil }
func (stubUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (stubUsers) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (stubUsers) UpdateLastLogin(ctx context.Context, id uuid.UUID) error { return nil }
func (stubUsers) UpdateName(ctx context.Context, id uuid.UUID, name string) error {
	return repositories.ErrUserNotFound
}
func (stubUsers) UpdatePassword(ctx context.Context, id uuid.UUID, hashedPassword string) error {
	return repositories.ErrUserNotFound
}

func newTestRouter() http.Handler {
	svc := service.NewFileService(stubFileRepo{}, stubQuota{}, stubOwners{}, contentstore.NewMemoryStore(), time.Second)
	return api.SetupRouter(nil, handlers.NewAuthHandler(stubUsers{}), handlers.NewFileHandler(svc))
}

func sessionCookie(t *testing.T) *http.Cookie {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": uuid.NewString(),
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(config.Envs.JWTSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: "token", Value: token}
}

func TestListRouteServesCollectionRoot(t *testing.T) {
	router := newTestRouter()

	// Both the bare collection path and the slashed form must serve the
	// listing directly; a redirect into the stripped namespace is a dead end.
	for _, path := range []string{"/api/v1/files", "/api/v1/files/"} {
		r := httptest.NewRequest(http.MethodGet, path, nil)
		r.AddCookie(sessionCookie(t))
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, r)

		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), `"files"`, path)
		assert.Contains(t, rec.Body.String(), `"pagination"`, path)
	}
}

func TestFileRoutesRequireAuth(t *testing.T) {
	router := newTestRouter()

	r := httptest.NewRequest(http.MethodGet, "/api/v1/files", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSharedRouteIsPublic(t *testing.T) {
	router := newTestRouter()

	// No session cookie: the capability route must reach the handler and
	// answer 404 for an unknown token, not 401 from the middleware.
	r := httptest.NewRequest(http.MethodGet, "/api/v1/files/shared/deadbeef", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "File not found")
}
