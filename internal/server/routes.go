package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Tomlord1122/todo-threads/internal/auth"
	"github.com/Tomlord1122/todo-threads/internal/domain"
)

func (s *Server) RegisterRoutes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Use(s.metrics.Middleware)

	r.Get("/health", s.healthHandler)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(s.tokens, s.users))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/sign-up", s.signUpHandler)
			r.Post("/sign-in", s.signInHandler)
			r.Get("/session", s.sessionHandler)
		})

		r.Route("/todos", func(r chi.Router) {
			r.Get("/", s.listTodosHandler)
			r.Post("/", s.createTodoHandler)
			r.Get("/stats", s.todoStatsHandler)
			r.Post("/{id}/toggle", s.toggleTodoHandler)
			r.Patch("/{id}", s.updateTodoHandler)
			r.Delete("/{id}", s.deleteTodoHandler)
		})

		r.Route("/threads", func(r chi.Router) {
			r.Get("/", s.listThreadsHandler)
			r.Post("/", s.createThreadHandler)
			r.Get("/{id}", s.getThreadHandler)
			r.Patch("/{id}/title", s.updateThreadTitleHandler)
			r.Patch("/{id}/status", s.updateThreadStatusHandler)
			r.Delete("/{id}", s.deleteThreadHandler)
			r.Post("/{id}/messages", s.sendMessageHandler)
			r.Delete("/{id}/messages/{messageId}", s.deleteMessageHandler)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", s.dashboardSummaryHandler)
			r.Get("/recent", s.dashboardRecentHandler)
		})
	})

	return r
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	healthStats := s.db.Health()
	if status, ok := healthStats["status"]; ok && status == "down" {
		respondWithJSON(w, http.StatusServiceUnavailable, healthStats)
		return
	}
	respondWithJSON(w, http.StatusOK, healthStats)
}

// decodeJSONBody decodes a strict JSON body into dst. On failure it has
// already written the response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	err := decoder.Decode(dst)
	if err == nil {
		return true
	}

	var syntaxError *json.SyntaxError
	var unmarshalTypeError *json.UnmarshalTypeError
	if errors.As(err, &syntaxError) {
		msg := fmt.Sprintf("Request body contains badly-formed JSON (at position %d)", syntaxError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.ErrUnexpectedEOF) {
		msg := "Request body contains badly-formed JSON"
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.As(err, &unmarshalTypeError) {
		msg := fmt.Sprintf("Request body contains an invalid value for the %q field (at position %d)", unmarshalTypeError.Field, unmarshalTypeError.Offset)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if strings.HasPrefix(err.Error(), "json: unknown field ") {
		fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
		msg := fmt.Sprintf("Request body contains unknown field %s", fieldName)
		respondWithError(w, http.StatusBadRequest, msg)
	} else if errors.Is(err, io.EOF) {
		msg := "Request body must not be empty"
		respondWithError(w, http.StatusBadRequest, msg)
	} else {
		log.Printf("Error decoding %s %s request: %v", r.Method, r.URL.Path, err)
		respondWithError(w, http.StatusInternalServerError, "Error processing request")
	}
	return false
}

// requireUser answers 401 for anonymous requests, so that body decoding
// errors never mask a missing session.
func requireUser(w http.ResponseWriter, r *http.Request) bool {
	if auth.UserFromContext(r.Context()) == nil {
		respondWithServiceError(w, domain.Unauthenticated(), "authenticate")
		return false
	}
	return true
}

type errorResponse struct {
	Error        string      `json:"error"`
	Code         domain.Code `json:"code,omitempty"`
	RetryAfterMs int64       `json:"retryAfterMs,omitempty"`
}

var statusByCode = map[domain.Code]int{
	domain.CodeUnauthenticated: http.StatusUnauthorized,
	domain.CodeRateLimited:     http.StatusTooManyRequests,
	domain.CodeNotFound:        http.StatusNotFound,
	domain.CodeForbidden:       http.StatusForbidden,
	domain.CodeInvalidArgument: http.StatusBadRequest,
}

// respondWithServiceError reports domain errors as-is; anything else is
// logged and hidden behind a generic "Failed to <action>".
func respondWithServiceError(w http.ResponseWriter, err error, action string) {
	var derr *domain.Error
	if errors.As(err, &derr) {
		status, ok := statusByCode[derr.Code]
		if !ok {
			status = http.StatusInternalServerError
		}
		resp := errorResponse{Error: derr.Error(), Code: derr.Code}
		if derr.Code == domain.CodeRateLimited {
			resp.RetryAfterMs = derr.RetryAfterMs()
			seconds := int64(math.Ceil(derr.RetryAfter.Seconds()))
			w.Header().Set("Retry-After", strconv.FormatInt(max(seconds, 1), 10))
		}
		respondWithJSON(w, status, resp)
		return
	}

	log.Printf("Error calling service to %s: %v", action, err)
	respondWithError(w, http.StatusInternalServerError, "Failed to "+action)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, errorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling JSON response: %v", err)
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error preparing response"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}
