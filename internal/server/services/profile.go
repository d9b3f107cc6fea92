package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/dbx"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/repositories/users"
	"github.com/dmitrijs2005/channelhub/internal/validation"
)

func (s *UserService) CurrentUser(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		return nil, userLoadError(err)
	}
	return user.Public(), nil
}

func (s *UserService) UpdateAccountDetails(ctx context.Context, userID, fullName, email string) (*models.PublicUser, error) {
	fullName = strings.TrimSpace(fullName)
	email = strings.ToLower(strings.TrimSpace(email))

	if fullName == "" || email == "" {
		return nil, common.Validation(msgFieldsRequired)
	}
	if !validation.ValidateEmail(email) {
		return nil, common.Validation(msgInvalidEmail)
	}

	user, err := s.repomanager.Users(s.db).UpdateAccountDetails(ctx, userID, fullName, email)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.Conflict("Email is already in use")
		}
		return nil, userLoadError(err)
	}
	return user.Public(), nil
}

// mediaField describes one replaceable media column of a user.
type mediaField struct {
	name    string
	current func(*models.User) string
	update  func(users.Repository, context.Context, string, string) (*models.User, error)
}

var (
	avatarField = mediaField{
		name:    "avatar",
		current: func(u *models.User) string { return u.Avatar },
		update:  users.Repository.UpdateAvatar,
	}
	coverImageField = mediaField{
		name:    "cover image",
		current: func(u *models.User) string { return u.CoverImage },
		update:  users.Repository.UpdateCoverImage,
	}
)

// UpdateAvatar uploads the file at path and makes it the user's avatar.
// The previous avatar is deleted in the background.
func (s *UserService) UpdateAvatar(ctx context.Context, userID, path string) (*models.PublicUser, error) {
	return s.replaceMedia(ctx, userID, path, avatarField)
}

// UpdateCoverImage is UpdateAvatar for the cover image. Nothing is deleted
// when the user had no cover image.
func (s *UserService) UpdateCoverImage(ctx context.Context, userID, path string) (*models.PublicUser, error) {
	return s.replaceMedia(ctx, userID, path, coverImageField)
}

func (s *UserService) replaceMedia(ctx context.Context, userID, path string, f mediaField) (*models.PublicUser, error) {
	if path == "" {
		return nil, common.Validation(strings.ToUpper(f.name[:1]) + f.name[1:] + " file is missing")
	}

	url, err := s.media.Upload(ctx, path)
	if err != nil || url == "" {
		return nil, common.Upload("Error while uploading "+f.name, err)
	}

	var (
		oldURL  string
		updated *models.User
	)
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		oldURL = f.current(user)

		updated, err = f.update(repo, ctx, userID, url)
		return err
	})
	if err != nil {
		s.deleteMediaLater(ctx, url)
		return nil, userLoadError(err)
	}

	s.deleteMediaLater(ctx, oldURL)

	return updated.Public(), nil
}

func userLoadError(err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.NotFound(msgUserNotFound)
	}
	return common.Internal("error accessing user", err)
}
