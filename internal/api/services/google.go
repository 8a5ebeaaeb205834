package services

import (
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func redirectURL() string {
	if url := os.Getenv("GOOGLE_REDIRECT_URL"); url != "" {
		return url
	}
	return "http://localhost:8080/api/v1/auth/google/callback"
}

var GoogleOauthConfig = &oauth2.Config{
	ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
	ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	RedirectURL:  redirectURL(),
	Scopes: []string{
		"https://www.googleapis.com/auth/userinfo.email",
		"https://www.googleapis.com/auth/userinfo.profile",
	},
	Endpoint: google.Endpoint,
}
