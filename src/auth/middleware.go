package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kelseyhightower/envconfig"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	// Bcrypt hash of the shared API key. When empty, authentication is
	// disabled and every caller is treated as the anonymous client.
	APIKeyHash string `envconfig:"API_KEY_HASH" default:""`
	ClientName string `envconfig:"API_CLIENT_NAME" default:"default"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

// APIKeyMiddleware validates the X-Api-Key header against the configured
// bcrypt hash and attaches the client identity to the request context.
func APIKeyMiddleware(cfg Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.APIKeyHash == "" {
				ctx := context.WithValue(r.Context(), ClientKey, &Client{Name: "anonymous"})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			key := r.Header.Get("X-Api-Key")
			if key == "" {
				logger.Warn("request rejected, missing API key")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if err := bcrypt.CompareHashAndPassword([]byte(cfg.APIKeyHash), []byte(key)); err != nil {
				logger.Warn("request rejected, invalid API key")
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), ClientKey, &Client{Name: cfg.ClientName})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
