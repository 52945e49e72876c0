package auth

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/Tomlord1122/todo-threads/internal/domain"
	"github.com/Tomlord1122/todo-threads/internal/repository"
)

// UserFinder loads the account a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Middleware resolves the bearer token into a user on the request context.
// Requests without a usable token continue anonymously; the services decide
// whether that is acceptable. A failed user lookup other than not-found is a 500.
func Middleware(tokens *TokenManager, users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				log.Println("Invalid Authorization header format")
				next.ServeHTTP(w, r)
				return
			}

			userID, err := tokens.Parse(tokenString)
			if err != nil {
				log.Printf("Token parsing error: %v", err)
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.FindByID(r.Context(), userID)
			if errors.Is(err, repository.ErrNotFound) {
				log.Printf("Session user %s no longer exists", userID)
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				log.Printf("Error loading session user %s: %v", userID, err)
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"Failed to load session"}`))
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
