package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type todoTextRequest struct {
	Text string `json:"text"`
}

func (s *Server) listTodosHandler(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid completed filter, expected true or false")
			return
		}
		todos, err := s.todoService.ListByStatus(r.Context(), completed)
		if err != nil {
			respondWithServiceError(w, err, "retrieve todos")
			return
		}
		respondWithJSON(w, http.StatusOK, todos)
		return
	}

	todos, err := s.todoService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "retrieve todos")
		return
	}
	respondWithJSON(w, http.StatusOK, todos)
}

func (s *Server) todoStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.todoService.Stats(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "compute todo stats")
		return
	}
	respondWithJSON(w, http.StatusOK, stats)
}

func (s *Server) createTodoHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req todoTextRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todo, err := s.todoService.Create(r.Context(), req.Text)
	if err != nil {
		respondWithServiceError(w, err, "create todo")
		return
	}
	respondWithJSON(w, http.StatusCreated, todo)
}

func (s *Server) toggleTodoHandler(w http.ResponseWriter, r *http.Request) {
	todo, err := s.todoService.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "toggle todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) updateTodoHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req todoTextRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	todo, err := s.todoService.UpdateText(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		respondWithServiceError(w, err, "update todo")
		return
	}
	respondWithJSON(w, http.StatusOK, todo)
}

func (s *Server) deleteTodoHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.todoService.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "delete todo")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
