// Package api is the HTTP binding of the account services: routing, auth
// middleware, cookies, multipart uploads and error mapping.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/logging"
	"github.com/dmitrijs2005/channelhub/internal/server/config"
	"github.com/dmitrijs2005/channelhub/internal/server/metrics"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

type userService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.PublicUser, error)
	Login(ctx context.Context, in services.LoginInput) (*services.Session, error)
	Logout(ctx context.Context, userID string) error
	Refresh(ctx context.Context, refreshToken string) (*services.Session, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error)
	UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error)
	UpdateAvatar(ctx context.Context, userID, path string) (*models.PublicUser, error)
	UpdateCoverImage(ctx context.Context, userID, path string) (*models.PublicUser, error)
}

type channelService interface {
	ChannelProfile(ctx context.Context, username, viewerID string) (*models.ChannelProfile, error)
	Subscribe(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error)
	Unsubscribe(ctx context.Context, subscriberID, channelID string) error
}

// pinger reports database health; *sql.DB satisfies it.
type pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	address        string
	router         chi.Router
	logger         logging.Logger
	users          userService
	channels       channelService
	tokens         tokenVerifier
	metrics        *metrics.Metrics
	db             pinger
	uploadDir      string
	maxUploadBytes int64
	secureCookies  bool
	accessTTL      time.Duration
	refreshTTL     time.Duration
}

func NewServer(cfg *config.Config, l logging.Logger, us userService, cs channelService, tokens tokenVerifier, m *metrics.Metrics, db pinger) *Server {
	s := &Server{
		address:        cfg.EndpointAddrHTTP,
		logger:         l.With("module", "http_server"),
		users:          us,
		channels:       cs,
		tokens:         tokens,
		metrics:        m,
		db:             db,
		uploadDir:      cfg.UploadDir,
		maxUploadBytes: cfg.MaxUploadBytes,
		secureCookies:  cfg.SecureCookies,
		accessTTL:      cfg.AccessTokenValidityDuration,
		refreshTTL:     cfg.RefreshTokenValidityDuration,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.metrics.Middleware)

	r.Get("/health", s.health)
	r.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/login", s.login)
			r.Post("/refresh-token", s.refreshToken)
			r.With(s.OptionalAuth).Get("/c/{username}", s.channelProfile)

			r.Group(func(r chi.Router) {
				r.Use(s.RequireAuth)
				r.Post("/logout", s.logout)
				r.Post("/change-password", s.changePassword)
				r.Get("/current-user", s.currentUser)
				r.Patch("/update-account", s.updateAccount)
				r.Patch("/avatar", s.updateAvatar)
				r.Patch("/cover-image", s.updateCoverImage)
			})
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Use(s.RequireAuth)
			r.Post("/c/{channelID}", s.subscribe)
			r.Delete("/c/{channelID}", s.unsubscribe)
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "Stopping HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	status := http.StatusOK

	if err := s.db.PingContext(r.Context()); err != nil {
		dbStatus = "error"
		status = http.StatusServiceUnavailable
	}

	result := "ok"
	if status != http.StatusOK {
		result = "degraded"
	}

	writeJSON(w, status, map[string]any{
		"status": result,
		"checks": map[string]string{
			"database": dbStatus,
		},
	})
}
