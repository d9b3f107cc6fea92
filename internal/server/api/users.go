package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/channelhub/internal/common"
	"github.com/dmitrijs2005/channelhub/internal/server/models"
	"github.com/dmitrijs2005/channelhub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required_without=Username,omitempty,max=254"`
	Username string `json:"username" validate:"required_without=Email,omitempty,max=64"`
	Password string `json:"password" validate:"required,max=128"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,max=128"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required,max=128"`
	Email    string `json:"email" validate:"required,max=254"`
}

type sessionResponse struct {
	User         any    `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// authOutcome labels auth metrics with "success" or the error kind.
func authOutcome(err error) string {
	if err == nil {
		return "success"
	}
	return common.KindOf(err).Error()
}

// POST /api/v1/users/register
func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer cleanupMultipart(r)

	avatarPath, err := s.saveFormFile(r, "avatar")
	if err != nil {
		badRequest(w, "Invalid avatar upload")
		return
	}
	coverPath, err := s.saveFormFile(r, "coverImage")
	if err != nil {
		removeTemp(avatarPath)
		badRequest(w, "Invalid cover image upload")
		return
	}
	// the media store removes what it uploads; this catches early rejections
	defer removeTemp(avatarPath, coverPath)

	user, err := s.users.Register(r.Context(), services.RegisterInput{
		FullName:       r.FormValue("fullName"),
		Email:          r.FormValue("email"),
		Username:       r.FormValue("username"),
		Password:       r.FormValue("password"),
		AvatarPath:     avatarPath,
		CoverImagePath: coverPath,
	})
	s.metrics.RecordAuthEvent("register", authOutcome(err))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeOK(w, http.StatusCreated, user, "User registered successfully")
}

// POST /api/v1/users/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	session, err := s.users.Login(r.Context(), services.LoginInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	s.metrics.RecordAuthEvent("login", authOutcome(err))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.setSessionCookies(w, session.AccessToken, session.RefreshToken)
	writeOK(w, http.StatusOK, sessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, "User logged in successfully")
}

// POST /api/v1/users/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	err := s.users.Logout(r.Context(), GetUserID(r))
	s.metrics.RecordAuthEvent("logout", authOutcome(err))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.clearSessionCookies(w)
	writeOK(w, http.StatusOK, struct{}{}, "User logged out")
}

// POST /api/v1/users/refresh-token
//
// A token in the JSON body wins over the refresh cookie, so a client holding
// a freshly rotated token is not shadowed by a stale cookie.
func (s *Server) refreshToken(w http.ResponseWriter, r *http.Request) {
	var token string
	if r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeAndValidate(r.Body, &req); err != nil {
			badRequest(w, err.Error())
			return
		}
		token = req.RefreshToken
	}
	if token == "" {
		if c, err := r.Cookie(common.RefreshTokenCookieName); err == nil {
			token = c.Value
		}
	}

	session, err := s.users.Refresh(r.Context(), token)
	s.metrics.RecordAuthEvent("refresh", authOutcome(err))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	s.setSessionCookies(w, session.AccessToken, session.RefreshToken)
	writeOK(w, http.StatusOK, sessionResponse{
		User:         session.User,
		AccessToken:  session.AccessToken,
		RefreshToken: session.RefreshToken,
	}, "Access token refreshed")
}

// POST /api/v1/users/change-password
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	err := s.users.ChangePassword(r.Context(), GetUserID(r), req.OldPassword, req.NewPassword)
	s.metrics.RecordAuthEvent("change_password", authOutcome(err))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}

	writeOK(w, http.StatusOK, struct{}{}, "Password changed successfully")
}

// GET /api/v1/users/current-user
func (s *Server) currentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.CurrentUser(r.Context(), GetUserID(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, "User fetched successfully")
}

// PATCH /api/v1/users/update-account
func (s *Server) updateAccount(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := decodeAndValidate(r.Body, &req); err != nil {
		badRequest(w, err.Error())
		return
	}

	user, err := s.users.UpdateAccountDetails(r.Context(), GetUserID(r), req.FullName, req.Email)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, "Account details updated successfully")
}

// PATCH /api/v1/users/avatar
func (s *Server) updateAvatar(w http.ResponseWriter, r *http.Request) {
	s.replaceMedia(w, r, "avatar", s.users.UpdateAvatar, "Avatar updated successfully")
}

// PATCH /api/v1/users/cover-image
func (s *Server) updateCoverImage(w http.ResponseWriter, r *http.Request) {
	s.replaceMedia(w, r, "coverImage", s.users.UpdateCoverImage, "Cover image updated successfully")
}

func (s *Server) replaceMedia(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	update func(ctx context.Context, userID, path string) (*models.PublicUser, error),
	message string,
) {
	if !s.parseMultipart(w, r) {
		return
	}
	defer cleanupMultipart(r)

	path, err := s.saveFormFile(r, field)
	if err != nil {
		badRequest(w, "Invalid file upload")
		return
	}
	defer removeTemp(path)

	user, err := update(r.Context(), GetUserID(r), path)
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, user, message)
}

// GET /api/v1/users/c/{username}
func (s *Server) channelProfile(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(chi.URLParam(r, "username"))

	profile, err := s.channels.ChannelProfile(r.Context(), username, GetUserID(r))
	if err != nil {
		s.serviceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, profile, "User channel fetched successfully")
}
