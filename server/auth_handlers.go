package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
	"github.com/techagentng/earnly/services"
)

func (s *Server) handleHealth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.DB != nil && s.DB.DB != nil {
			sqlDB, err := s.DB.DB.DB()
			if err == nil {
				err = sqlDB.PingContext(c.Request.Context())
			}
			if err != nil {
				logger.Error("health check: database unreachable", "error", err)
				response.JSON(c, "database unreachable", http.StatusServiceUnavailable, nil, errs.New("unhealthy", http.StatusServiceUnavailable))
				return
			}
		}
		response.JSON(c, "ok", http.StatusOK, nil, nil)
	}
}

// handleSignup accepts JSON or a multipart form with an optional profile_image.
func (s *Server) handleSignup() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SignupRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}

		avatar, err := optionalFile(c, "profile_image")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		var thumbnailURL string
		if avatar != nil {
			upload, err := s.MediaService.UploadFile(c.Request.Context(), avatar, services.FolderAvatars)
			if err != nil {
				response.HandleErrors(c, err)
				return
			}
			thumbnailURL = upload.ThumbnailURL
		}

		user, apiErr := s.AuthService.SignupUser(&req, thumbnailURL)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "signup successful", http.StatusCreated, models.NewUserResponse(user), nil)
	}
}

func (s *Server) handleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		var loginRequest models.LoginRequest
		if err := decode(c, &loginRequest); err != nil {
			response.HandleErrors(c, err)
			return
		}
		userResponse, apiErr := s.AuthService.LoginUser(&loginRequest)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, userResponse, nil)
	}
}

func (s *Server) handleRefreshToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		tokens, apiErr := s.AuthService.RefreshToken(req.RefreshToken)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "token refreshed", http.StatusOK, tokens, nil)
	}
}

// handleLogout blacklists the access token used for this request.
func (s *Server) handleLogout() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken, user, apiErr := getValuesFromContext(c)
		if apiErr != nil {
			respondAndAbort(c, "", apiErr.Status, nil, apiErr)
			return
		}
		if err := s.AuthService.Logout(accessToken); err != nil {
			logger.Error("logout failed", "user_id", user.ID, "error", err)
			respondAndAbort(c, "logout failed", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		response.JSON(c, "logout successful", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleShowProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.AuthService.GetUserProfile(currentUser(c).ID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "user profile retrieved successfully", http.StatusOK, user, nil)
	}
}

func (s *Server) handleEditUserProfile() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EditProfileRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		user, err := s.AuthService.EditUserProfile(currentUser(c).ID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "user details updated successfully", http.StatusOK, user, nil)
	}
}

func (s *Server) handleUpdateUserImage() gin.HandlerFunc {
	return func(c *gin.Context) {
		fh, err := c.FormFile("profile_image")
		if err != nil {
			response.JSON(c, "missing or invalid file", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}
		upload, err := s.MediaService.UploadFile(c.Request.Context(), fh, services.FolderAvatars)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if err := s.AuthService.UpdateUserImage(currentUser(c).ID, upload.ThumbnailURL); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "profile image updated", http.StatusOK, upload, nil)
	}
}

func (s *Server) handleUpdateFCMToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.FCMTokenRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if err := s.AuthService.UpdateFCMToken(currentUser(c).ID, req.Token); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "device registered", http.StatusOK, nil, nil)
	}
}

func (s *Server) HandleGoogleLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.GoogleOAuth == nil || !s.GoogleOAuth.Enabled() {
			response.JSON(c, "google sign-in is not configured", http.StatusServiceUnavailable, nil, errs.New("google sign-in unavailable", http.StatusServiceUnavailable))
			return
		}
		url, err := s.GoogleOAuth.AuthURL()
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if c.Query("redirect") == "false" {
			response.JSON(c, "google sign-in url", http.StatusOK, gin.H{"url": url}, nil)
			return
		}
		c.Redirect(http.StatusTemporaryRedirect, url)
	}
}

func (s *Server) HandleGoogleCallback() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.GoogleOAuth == nil || !s.GoogleOAuth.Enabled() {
			response.JSON(c, "google sign-in is not configured", http.StatusServiceUnavailable, nil, errs.New("google sign-in unavailable", http.StatusServiceUnavailable))
			return
		}
		code := c.Query("code")
		if code == "" {
			response.JSON(c, "code not found", http.StatusBadRequest, nil, errs.ErrBadRequest)
			return
		}
		googleUser, err := s.GoogleOAuth.Exchange(c.Request.Context(), c.Query("state"), code)
		if err != nil {
			logger.Warn("google callback failed", "error", err)
			response.JSON(c, "google sign-in failed", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		login, apiErr := s.AuthService.GoogleLoginUser(googleUser)
		if apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "login successful", http.StatusOK, login, nil)
	}
}
