package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/auth"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/users"
	"github.com/dmitrijs2005/channelhub/internal/validation"
)

// Session is what a successful login or refresh hands back.
type Session struct {
	User         *models.PublicUser
	AccessToken  string
	RefreshToken string
}

// LoginInput identifies the user by email or username; one is enough.
type LoginInput struct {
	Email    string
	Username string
	Password string
}

const (
	msgIdentifierRequired = "username or email is required"
	msgUserNotFound       = "user does not exist"
	msgIncorrectPassword  = "incorrect password"
	msgInvalidPassword    = "invalid password"
	msgUnauthorized       = "unauthorized"
	msgInvalidToken       = "invalid token"
	msgExpiredOrReused    = "expired or reused"
	msgTokenIssue         = "Something went wrong while generating refresh and access token"
)

func (s *UserService) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if email == "" && username == "" {
		return nil, common.Validation(msgIdentifierRequired)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.FindByEmailOrUserName(ctx, email, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgUserNotFound)
		}
		return nil, common.Internal("error loading user", err)
	}

	if !users.CheckPassword(user.Password, in.Password) {
		return nil, common.Auth(msgIncorrectPassword)
	}

	session, err := s.issueSession(ctx, repo, user)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return session, nil
}

// Logout forgets the stored refresh token. Calling it twice is harmless.
func (s *UserService) Logout(ctx context.Context, userID string) error {
	repo := s.repomanager.Users(s.db)
	if err := repo.SetRefreshToken(ctx, userID, nil); err != nil {
		return common.Internal("error clearing refresh token", err)
	}
	return nil
}

// Refresh trades a refresh token for a new pair. The token must be the one
// stored for its user; anything older was rotated away and is rejected.
//
// Two concurrent refreshes with the same token are not serialized: both may
// pass the equality check, and the last write wins.
func (s *UserService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return nil, common.Auth(msgUnauthorized)
	}

	claims, err := s.tokens.VerifyRefreshToken(refreshToken)
	if err != nil {
		return nil, common.Auth(msgInvalidToken)
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, claims.UserID())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.Auth(msgInvalidToken)
		}
		return nil, common.Internal("error loading user", err)
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		s.logger.Warn(ctx, "refresh token expired or reused", "user_id", user.ID)
		return nil, common.Auth(msgExpiredOrReused)
	}

	return s.issueSession(ctx, repo, user)
}

// ChangePassword replaces the password after checking the current one. The
// new password has to satisfy the registration rules.
func (s *UserService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.NotFound(msgUserNotFound)
		}
		return common.Internal("error loading user", err)
	}

	if !users.CheckPassword(user.Password, oldPassword) {
		return common.Auth(msgInvalidPassword)
	}

	if msg := validation.ValidatePassword(newPassword); msg != "" {
		return common.Validation(msg)
	}

	if err := repo.UpdatePassword(ctx, userID, newPassword); err != nil {
		switch {
		case errors.Is(err, users.ErrPasswordTooLong):
			return common.Validation(msgPasswordTooLong)
		case errors.Is(err, common.ErrorNotFound):
			return common.NotFound(msgUserNotFound)
		default:
			return common.Internal("error updating password", err)
		}
	}
	return nil
}

// issueSession mints a token pair for user and stores the refresh token,
// overwriting whatever was there before.
func (s *UserService) issueSession(ctx context.Context, repo users.Repository, user *models.User) (*Session, error) {
	access, err := s.tokens.IssueAccessToken(user.ID, auth.Identity{
		Username: user.UserName,
		Email:    user.Email,
		FullName: user.FullName,
	})
	if err != nil {
		return nil, common.Internal(msgTokenIssue, err)
	}

	refresh, err := s.tokens.IssueRefreshToken(user.ID)
	if err != nil {
		return nil, common.Internal(msgTokenIssue, err)
	}

	if err := repo.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, common.Internal(msgTokenIssue, err)
	}

	return &Session{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}
