// Package services holds the account flows: registration, sessions, profile
// mutations and the channel read model. Services return *common.Error values
// whose kind tells the transport how to respond.
package services

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/dmitrijs2005/channelhub/internal/logging"
	"github.com/dmitrijs2005/channelhub/internal/server/auth"
	"github.com/dmitrijs2005/channelhub/internal/server/media"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/repomanager"
)

// DefaultCleanupTimeout bounds a single background media deletion.
const DefaultCleanupTimeout = 30 * time.Second

type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	tokens         *auth.TokenService
	media          media.Store
	logger         logging.Logger
	cleanupTimeout time.Duration

	mu         sync.Mutex
	closed     bool
	background sync.WaitGroup
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService, store media.Store, logger logging.Logger) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		tokens:         tokens,
		media:          store,
		logger:         logger,
		cleanupTimeout: DefaultCleanupTimeout,
	}
}

// Wait blocks until every scheduled media deletion has finished.
func (s *UserService) Wait() {
	s.background.Wait()
}

// Close stops background scheduling and waits for pending deletions.
// Deletions requested afterwards run on the caller's goroutine, so handlers
// still in flight after a timed-out shutdown never race the wait.
func (s *UserService) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.background.Wait()
}

// deleteMediaLater removes url from the media store in the background.
// Failures are logged and never reach the caller. An empty url is ignored.
func (s *UserService) deleteMediaLater(ctx context.Context, url string) {
	if url == "" {
		return
	}

	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.deleteMedia(ctx, url)
		return
	}
	s.background.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.background.Done()
		s.deleteMedia(ctx, url)
	}()
}

func (s *UserService) deleteMedia(ctx context.Context, url string) {
	ctx, cancel := context.WithTimeout(ctx, s.cleanupTimeout)
	defer cancel()

	if err := s.media.Delete(ctx, url); err != nil {
		s.logger.Warn(ctx, "media cleanup failed", "url", url, "error", err)
		return
	}
	s.logger.Debug(ctx, "media deleted", "url", url)
}
