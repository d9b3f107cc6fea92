package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/users"
	"github.com/dmitrijs2005/channelhub/internal/validation"
)

// RegisterInput carries the registration form. AvatarPath and CoverImagePath
// point to local temp files; CoverImagePath may be empty.
type RegisterInput struct {
	FullName       string
	Email          string
	Username       string
	Password       string
	AvatarPath     string
	CoverImagePath string
}

const (
	msgFieldsRequired   = "All fields are required"
	msgInvalidEmail     = "Invalid email address"
	msgPasswordTooLong  = "Password is too long"
	msgUserExists       = "User with email or username already exists"
	msgAvatarRequired   = "Avatar file is required"
	msgAvatarUpload     = "Error while uploading avatar"
	msgRegisterReadback = "Something went wrong while registering the user"
)

// Register creates an account. Uniqueness is checked before any media is
// uploaded; the unique indexes still decide races between concurrent calls.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.PublicUser, error) {
	fullName := strings.TrimSpace(in.FullName)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	username := strings.ToLower(strings.TrimSpace(in.Username))

	if fullName == "" || email == "" || username == "" || strings.TrimSpace(in.Password) == "" {
		return nil, common.Validation(msgFieldsRequired)
	}
	if !validation.ValidateEmail(email) {
		return nil, common.Validation(msgInvalidEmail)
	}
	if msg := validation.ValidatePassword(in.Password); msg != "" {
		return nil, common.Validation(msg)
	}

	repo := s.repomanager.Users(s.db)

	_, err := repo.FindByEmailOrUserName(ctx, email, username)
	switch {
	case err == nil:
		return nil, common.Conflict(msgUserExists)
	case !errors.Is(err, common.ErrorNotFound):
		return nil, common.Internal("error checking existing user", err)
	}

	if in.AvatarPath == "" {
		return nil, common.Validation(msgAvatarRequired)
	}

	avatarURL, err := s.media.Upload(ctx, in.AvatarPath)
	if err != nil || avatarURL == "" {
		return nil, common.Upload(msgAvatarUpload, err)
	}

	var coverURL string
	if in.CoverImagePath != "" {
		coverURL, err = s.media.Upload(ctx, in.CoverImagePath)
		if err != nil {
			s.logger.Warn(ctx, "cover image upload failed, registering without it", "error", err)
			coverURL = ""
		}
	}

	created, err := repo.Create(ctx, &models.User{
		UserName:   username,
		Email:      email,
		FullName:   fullName,
		Avatar:     avatarURL,
		CoverImage: coverURL,
		Password:   in.Password,
	})
	if err != nil {
		s.deleteMediaLater(ctx, avatarURL)
		s.deleteMediaLater(ctx, coverURL)

		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			return nil, common.Conflict(msgUserExists)
		case errors.Is(err, users.ErrPasswordTooLong):
			return nil, common.Validation(msgPasswordTooLong)
		default:
			return nil, common.Internal("error creating user", err)
		}
	}

	user, err := repo.GetByID(ctx, created.ID)
	if err != nil {
		return nil, common.Internal(msgRegisterReadback, err)
	}

	s.logger.Info(ctx, "user registered", "user_id", user.ID, "username", user.UserName)

	return user.Public(), nil
}
