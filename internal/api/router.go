package api

import (
	"log"
	"net/http"

	_ "github.com/vaultix/vaultix/docs"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/rs/cors"
	"github.com/vaultix/vaultix/internal/api/handlers"
	"github.com/vaultix/vaultix/internal/api/middleware"
	"github.com/vaultix/vaultix/internal/config"
	"github.com/vaultix/vaultix/internal/utils"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, authHandler *handlers.AuthHandler, fileHandler *handlers.FileHandler) http.Handler {
	mainMux := http.NewServeMux()
	c := cors.New(config.Envs.CorsConfig)

	// ---------- PUBLIC ROUTES ----------
	mainMux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		code := http.StatusOK

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(r.Context())
		}
		if err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		utils.JSONResponse(w, code, utils.Payload{
			Success: code == http.StatusOK,
			Message: "Health check",
			Data:    map[string]any{"status": status},
		})
	})

	mainMux.HandleFunc("/docs/", httpSwagger.WrapHandler)

	authMux := http.NewServeMux()
	authMux.HandleFunc("POST /register", authHandler.Register)
	authMux.HandleFunc("POST /login", authHandler.Login)
	authMux.HandleFunc("/google/login", authHandler.HandleGoogleLogin)
	authMux.HandleFunc("/google/callback", authHandler.HandleGoogleCallback)

	// /api/v1/auth/ shadows the broader /api/v1/ subtree, so the
	// authenticated auth endpoints are wrapped here rather than on the
	// protected mux.
	authMux.Handle("GET /me", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Me)))
	authMux.Handle("PUT /profile", middleware.AuthMiddleware(http.HandlerFunc(authHandler.UpdateProfile)))
	authMux.Handle("PUT /change-password", middleware.AuthMiddleware(http.HandlerFunc(authHandler.ChangePassword)))
	authMux.Handle("POST /logout", middleware.AuthMiddleware(http.HandlerFunc(authHandler.Logout)))

	mainMux.Handle("/api/v1/auth/",
		http.StripPrefix("/api/v1/auth", authMux),
	)

	// Shared-file access is capability based: the token is the authorization,
	// so it lives outside the auth middleware.
	mainMux.HandleFunc("GET /api/v1/files/shared/{token}", fileHandler.AccessShared)

	// ---------- PROTECTED ROUTES ----------
	protectedMux := http.NewServeMux()

	fileMux := http.NewServeMux()
	fileMux.HandleFunc("POST /upload", fileHandler.Upload)
	fileMux.HandleFunc("GET /{$}", fileHandler.List)
	fileMux.HandleFunc("GET /{id}", fileHandler.Get)
	fileMux.HandleFunc("PUT /{id}", fileHandler.Update)
	fileMux.HandleFunc("DELETE /{id}", fileHandler.Delete)
	fileMux.HandleFunc("POST /{id}/share", fileHandler.Share)

	// The subtree pattern alone would answer the bare collection path with a
	// redirect into the stripped namespace, so the exact path is routed too.
	protectedMux.HandleFunc("GET /files", fileHandler.List)
	protectedMux.Handle("/files/",
		http.StripPrefix("/files", fileMux),
	)

	mainMux.Handle("/api/v1/",
		http.StripPrefix(
			"/api/v1",
			middleware.AuthMiddleware(protectedMux),
		),
	)

	log.Println("Router initialized")
	handler := c.Handler(mainMux)
	handler = middleware.Logger(handler)
	return handler
}
