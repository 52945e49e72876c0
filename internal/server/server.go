package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Tomlord1122/todo-threads/internal/auth"
	"github.com/Tomlord1122/todo-threads/internal/config"
	"github.com/Tomlord1122/todo-threads/internal/database"
	"github.com/Tomlord1122/todo-threads/internal/metrics"
	"github.com/Tomlord1122/todo-threads/internal/service"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	DB        database.Service
	Metrics   *metrics.Metrics
	Tokens    *auth.TokenManager
	Users     auth.UserFinder
	Auth      service.AuthService
	Todos     service.TodoService
	Threads   service.ThreadService
	Dashboard service.DashboardService
}

type Server struct {
	port             int
	allowedOrigins   []string
	db               database.Service
	metrics          *metrics.Metrics
	tokens           *auth.TokenManager
	users            auth.UserFinder
	authService      service.AuthService
	todoService      service.TodoService
	threadService    service.ThreadService
	dashboardService service.DashboardService
}

func newServer(cfg *config.Config, deps Dependencies) *Server {
	return &Server{
		port:             cfg.Port,
		allowedOrigins:   cfg.AllowedOrigins,
		db:               deps.DB,
		metrics:          deps.Metrics,
		tokens:           deps.Tokens,
		users:            deps.Users,
		authService:      deps.Auth,
		todoService:      deps.Todos,
		threadService:    deps.Threads,
		dashboardService: deps.Dashboard,
	}
}

func NewServer(cfg *config.Config, deps Dependencies) *http.Server {
	appServer := newServer(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
