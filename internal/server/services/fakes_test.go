package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/dbx"
	"github.com/dmitrijs2005/channelhub/internal/logging"
	"github.com/dmitrijs2005/channelhub/internal/server/auth"
	"github.com/dmitrijs2005/channelhub/internal/server/config"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/subscriptions"
	usersrepo "github.com/dmitrijs2005/channelhub/internal/server/repositories/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	usersrepo.HashCost = bcrypt.MinCost
	os.Exit(m.Run())
}

// --- users ---

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User

	createErr     error
	getByIDErr    error
	setRefreshErr error
	updateErr     error
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*models.User{}}
}

func clone(u *models.User) *models.User {
	c := *u
	if u.RefreshToken != nil {
		t := *u.RefreshToken
		c.RefreshToken = &t
	}
	return &c
}

// seed stores a user with a hashed password and returns its id.
func (r *memUsers) seed(t *testing.T, username, email, password string) string {
	t.Helper()
	u, err := r.Create(context.Background(), &models.User{
		UserName: username, Email: email, FullName: username, Avatar: "http://cdn/" + username + ".png", Password: password,
	})
	if err != nil {
		t.Fatalf("seed %s: %v", username, err)
	}
	return u.ID
}

func (r *memUsers) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	hash, err := usersrepo.HashPassword(user.Password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if u.UserName == user.UserName || u.Email == user.Email {
			return nil, common.ErrorAlreadyExists
		}
	}

	now := time.Now()
	u := clone(user)
	u.ID = uuid.NewString()
	u.Password = hash
	u.CreatedAt, u.UpdatedAt = now, now
	r.byID[u.ID] = u
	return clone(u), nil
}

func (r *memUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	if r.getByIDErr != nil {
		return nil, r.getByIDErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return clone(u), nil
}

func (r *memUsers) GetByUserName(ctx context.Context, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.UserName == username })
}

func (r *memUsers) FindByEmailOrUserName(ctx context.Context, email, username string) (*models.User, error) {
	return r.find(func(u *models.User) bool {
		return (email != "" && u.Email == email) || (username != "" && u.UserName == username)
	})
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			return clone(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) mutate(id string, fn func(*models.User) error) (*models.User, error) {
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if err := fn(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *memUsers) UpdateAccountDetails(ctx context.Context, id, fullName, email string) (*models.User, error) {
	r.mu.Lock()
	for _, u := range r.byID {
		if u.ID != id && u.Email == email {
			r.mu.Unlock()
			return nil, common.ErrorAlreadyExists
		}
	}
	r.mu.Unlock()
	return r.mutate(id, func(u *models.User) error {
		u.FullName, u.Email = fullName, email
		return nil
	})
}

func (r *memUsers) UpdateAvatar(ctx context.Context, id, url string) (*models.User, error) {
	return r.mutate(id, func(u *models.User) error { u.Avatar = url; return nil })
}

func (r *memUsers) UpdateCoverImage(ctx context.Context, id, url string) (*models.User, error) {
	return r.mutate(id, func(u *models.User) error { u.CoverImage = url; return nil })
}

func (r *memUsers) SetRefreshToken(ctx context.Context, id string, token *string) error {
	if r.setRefreshErr != nil {
		return r.setRefreshErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok {
		if token == nil {
			u.RefreshToken = nil
		} else {
			t := *token
			u.RefreshToken = &t
		}
	}
	return nil
}

func (r *memUsers) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := usersrepo.HashPassword(password)
	if err != nil {
		return err
	}
	_, err = r.mutate(id, func(u *models.User) error { u.Password = hash; return nil })
	return err
}

func (r *memUsers) storedRefresh(id string) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.byID[id]; ok && u.RefreshToken != nil {
		t := *u.RefreshToken
		return &t
	}
	return nil
}

// --- subscriptions ---

type memSubs struct {
	mu   sync.Mutex
	recs []models.Subscription

	err error
}

func (r *memSubs) Create(ctx context.Context, subscriberID, channelID string) (*models.Subscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s := models.Subscription{ID: uuid.NewString(), SubscriberID: subscriberID, ChannelID: channelID, CreatedAt: time.Now()}
	r.recs = append(r.recs, s)
	return &s, nil
}

func (r *memSubs) Delete(ctx context.Context, subscriberID, channelID string) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []models.Subscription
	var n int64
	for _, s := range r.recs {
		if s.SubscriberID == subscriberID && s.ChannelID == channelID {
			n++
			continue
		}
		kept = append(kept, s)
	}
	r.recs = kept
	return n, nil
}

func (r *memSubs) Count(ctx context.Context, f subscriptions.Filter) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.recs {
		if (f.ChannelID == "" || s.ChannelID == f.ChannelID) && (f.SubscriberID == "" || s.SubscriberID == f.SubscriberID) {
			n++
		}
	}
	return n, nil
}

func (r *memSubs) Exists(ctx context.Context, f subscriptions.Filter) (bool, error) {
	n, err := r.Count(ctx, f)
	return n > 0, err
}

// --- manager ---

type fakeRepoManager struct {
	users usersrepo.Repository
	subs  subscriptions.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository             { return m.users }
func (m *fakeRepoManager) Subscriptions(db dbx.DBTX) subscriptions.Repository { return m.subs }

// --- media ---

type fakeMedia struct {
	mu sync.Mutex

	uploadErr  error
	emptyURL   bool
	deleteErr  error
	uploaded   []string
	deleted    []string
	deleteHook func()
}

func (m *fakeMedia) Upload(ctx context.Context, localPath string) (string, error) {
	os.Remove(localPath)
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploaded = append(m.uploaded, localPath)
	if m.emptyURL {
		return "", nil
	}
	return "http://cdn/" + uuid.NewString() + ".png", nil
}

func (m *fakeMedia) Delete(ctx context.Context, url string) error {
	if m.deleteHook != nil {
		m.deleteHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	return m.deleteErr
}

func (m *fakeMedia) deletedURLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.deleted...)
}

// --- wiring ---

var errBoom = errors.New("boom")

type fixture struct {
	db      *sql.DB
	mock    sqlmock.Sqlmock
	users   *memUsers
	subs    *memSubs
	media   *fakeMedia
	svc     *UserService
	channel *ChannelService
	tokens  *auth.TokenService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &fixture{
		db:    db,
		mock:  mock,
		users: newMemUsers(),
		subs:  &memSubs{},
		media: &fakeMedia{},
	}
	rm := &fakeRepoManager{users: f.users, subs: f.subs}
	f.tokens = auth.NewTokenService(&config.Config{
		AccessTokenSecret:            "access-secret",
		RefreshTokenSecret:           "refresh-secret",
		AccessTokenValidityDuration:  15 * time.Minute,
		RefreshTokenValidityDuration: 24 * time.Hour,
	})
	f.svc = NewUserService(db, rm, f.tokens, f.media, logging.NewZerologLogger("error", io.Discard))
	f.channel = NewChannelService(db, rm)
	return f
}

// tempFile creates an upload temp file and returns its path.
func tempFile(t *testing.T) string {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "upload-*")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	f.Close()
	return f.Name()
}

func authIdentity() auth.Identity {
	return auth.Identity{Username: "alice", Email: "alice@example.com", FullName: "Alice"}
}
