package middleware

import (
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/tresmil/internal/api/request"
	"github.com/mcoot/tresmil/internal/api/response"
)

// HashSecret bcrypt-hashes a refresh secret. An empty secret yields nil,
// which leaves RefreshSecret open.
func HashSecret(secret string) ([]byte, error) {
	if secret == "" {
		return nil, nil
	}
	return bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
}

// RefreshSecret guards maintenance routes with a shared secret.
// Only the bcrypt hash of the secret is held in memory.
func RefreshSecret(hash []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(hash) == 0 {
				next.ServeHTTP(w, r)
				return
			}

			secret := request.RefreshSecret(r)
			if secret == "" || bcrypt.CompareHashAndPassword(hash, []byte(secret)) != nil {
				response.JSON(w, http.StatusUnauthorized, response.Refresh{OK: false, Message: "Unauthorized"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
