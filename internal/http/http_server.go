package http

// this is entry point of the operational http handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/mux"

	"gitlab.com/signcall-2025.net/internal/core/ports/primary"
	"gitlab.com/signcall-2025.net/internal/core/ports/secondary"
	"gitlab.com/signcall-2025.net/internal/core/services/caption"
	"gitlab.com/signcall-2025.net/internal/handlers"
	"gitlab.com/signcall-2025.net/internal/handlers/response"
	"gitlab.com/signcall-2025.net/internal/handlers/rooms"
	"gitlab.com/signcall-2025.net/internal/handlers/workers"
)

type ServiceProvider struct {
	captionService caption.ICaptionService
	presenceRepo   secondary.PresenceRepository
	sessionRepo    secondary.SessionRepository
	jwtSecret      string
}

func NewServiceProvider(
	captionService caption.ICaptionService,
	presenceRepo secondary.PresenceRepository,
	sessionRepo secondary.SessionRepository,
	jwtSecret string,
) *ServiceProvider {
	return &ServiceProvider{
		captionService: captionService,
		presenceRepo:   presenceRepo,
		sessionRepo:    sessionRepo,
		jwtSecret:      jwtSecret,
	}
}

type Server struct {
	router          *mux.Router
	Port            int
	ServiceName     string
	ServiceProvider ServiceProvider
	logger          primary.Logger
	srv             *http.Server
}

func NewServer(port int, serviceName string, serviceProvider ServiceProvider, logger primary.Logger) *Server {
	return &Server{
		Port:            port,
		ServiceName:     serviceName,
		ServiceProvider: serviceProvider,
		logger:          logger,
	}
}

func (s *Server) Init() error {
	r := mux.NewRouter()

	r.HandleFunc("/ai/health", s.health).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(handlers.NewMiddlewareProvider(s.ServiceProvider.jwtSecret).JWTMiddleware)
	if s.ServiceProvider.presenceRepo != nil {
		workers.NewHandler(s.ServiceProvider.presenceRepo).Register(api)
	}
	if s.ServiceProvider.sessionRepo != nil {
		rooms.NewHandler(s.ServiceProvider.sessionRepo).Register(api)
	}

	s.router = r
	return nil
}

// Router exposes the routes for httptest servers.
func (s *Server) Router() *mux.Router {
	return s.router
}

// health reports readiness. The hub routes traffic with no model loaded,
// so model state is reported but never fails the check.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	response.WriteSuccess(w, map[string]interface{}{
		"status":       "ok",
		"service":      s.ServiceName,
		"model_loaded": s.ServiceProvider.captionService.ModelLoaded(),
		"model_type":   s.ServiceProvider.captionService.ModelType(),
	})
}

func (s *Server) Start(ctx context.Context) {
	s.srv = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		s.logger.Info("Server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()
}

func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("Shutting down http server...")
	if s.srv != nil {
		if err := s.srv.Shutdown(ctx); err != nil {
			s.logger.Error("Failed to shut down http server", "error", err)
		}
	}
}
