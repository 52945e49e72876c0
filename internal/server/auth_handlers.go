package server

import (
	"net/http"

	"github.com/Tomlord1122/todo-threads/internal/service"
)

func (s *Server) signUpHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignUpRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	session, err := s.authService.SignUp(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "sign up")
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

func (s *Server) signInHandler(w http.ResponseWriter, r *http.Request) {
	var req service.SignInRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	session, err := s.authService.SignIn(r.Context(), req)
	if err != nil {
		respondWithServiceError(w, err, "sign in")
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

func (s *Server) sessionHandler(w http.ResponseWriter, r *http.Request) {
	user, err := s.authService.Current(r.Context())
	if err != nil {
		respondWithServiceError(w, err, "load session")
		return
	}
	respondWithJSON(w, http.StatusOK, user)
}
