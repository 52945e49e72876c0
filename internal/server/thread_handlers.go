package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Tomlord1122/todo-threads/internal/domain"
)

type createThreadRequest struct {
	Title *string `json:"title"`
}

type threadTitleRequest struct {
	Title string `json:"title"`
}

type threadStatusRequest struct {
	Status domain.ThreadStatus `json:"status"`
}

type messageRequest struct {
	Content string `json:"content"`
}

func (s *Server) listThreadsHandler(w http.ResponseWriter, r *http.Request) {
	if raw := r.URL.Query().Get("status"); raw != "" {
		threads, err := s.threadService.ListByStatus(r.Context(), domain.ThreadStatus(raw))
		if err != nil {
			respondWithServiceError(w, err, "retrieve threads")
			return
		}
		respondWithJSON(w, http.StatusOK, threads)
		return
	}

	threads, err := s.threadService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "retrieve threads")
		return
	}
	respondWithJSON(w, http.StatusOK, threads)
}

func (s *Server) createThreadHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req createThreadRequest
	// The body is optional: an untitled thread needs none.
	if r.ContentLength != 0 && !decodeJSONBody(w, r, &req) {
		return
	}

	thread, err := s.threadService.Create(r.Context(), req.Title)
	if err != nil {
		respondWithServiceError(w, err, "create thread")
		return
	}
	respondWithJSON(w, http.StatusCreated, thread)
}

func (s *Server) getThreadHandler(w http.ResponseWriter, r *http.Request) {
	thread, err := s.threadService.GetWithMessages(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, err, "retrieve thread")
		return
	}
	respondWithJSON(w, http.StatusOK, thread)
}

func (s *Server) updateThreadTitleHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req threadTitleRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	thread, err := s.threadService.UpdateTitle(r.Context(), chi.URLParam(r, "id"), req.Title)
	if err != nil {
		respondWithServiceError(w, err, "update thread title")
		return
	}
	respondWithJSON(w, http.StatusOK, thread)
}

func (s *Server) updateThreadStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req threadStatusRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	thread, err := s.threadService.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		respondWithServiceError(w, err, "update thread status")
		return
	}
	respondWithJSON(w, http.StatusOK, thread)
}

func (s *Server) deleteThreadHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.threadService.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondWithServiceError(w, err, "delete thread")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	if !requireUser(w, r) {
		return
	}

	var req messageRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	msg, err := s.threadService.SendMessage(r.Context(), chi.URLParam(r, "id"), req.Content)
	if err != nil {
		respondWithServiceError(w, err, "send message")
		return
	}
	respondWithJSON(w, http.StatusCreated, msg)
}

func (s *Server) deleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	err := s.threadService.DeleteMessage(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "messageId"))
	if err != nil {
		respondWithServiceError(w, err, "delete message")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
