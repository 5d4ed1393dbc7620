package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/db"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
	"github.com/techagentng/earnly/services/jwt"
)

// Authorize checks the bearer token and loads the user into the context.
func (s *Server) Authorize() gin.HandlerFunc {
	return func(c *gin.Context) {
		accessToken := getTokenFromHeader(c)
		if accessToken == "" {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		if s.AuthRepository.IsTokenInBlacklist(accessToken) {
			respondAndAbort(c, "access token is blacklisted", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		accessClaims, err := jwt.ValidateAndGetClaims(accessToken, s.Config.JWTSecret)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}
		userID, err := jwt.UserIDFromClaims(accessClaims)
		if err != nil {
			respondAndAbort(c, "", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
			return
		}

		user, err := s.AuthRepository.FindUserByID(userID)
		if err != nil {
			if errors.Is(err, db.ErrUserNotFound) {
				respondAndAbort(c, "user not found", http.StatusUnauthorized, nil, errs.ErrUnauthorized)
				return
			}
			logger.Error("authorize: find user", "user_id", userID, "error", err)
			respondAndAbort(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
			return
		}
		if user.IsBlocked {
			respondAndAbort(c, "", errs.ErrBlockedUser.Status, nil, errs.ErrBlockedUser)
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Set("access_token", accessToken)
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := c.Get("user"); !ok || !user.(*models.User).IsAdmin() {
			respondAndAbort(c, "admin access required", http.StatusForbidden, nil, errs.ErrForbidden)
			return
		}
		c.Next()
	}
}

func RequireCreator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, ok := c.Get("user"); !ok || !user.(*models.User).IsCreator() {
			respondAndAbort(c, "", errs.ErrNotCreator.Status, nil, errs.ErrNotCreator)
			return
		}
		c.Next()
	}
}

func rateLimit(store ratelimit.Store, key func(c *gin.Context) string) gin.HandlerFunc {
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errs.ErrorHandler,
		KeyFunc:      key,
	})
}

func keyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// keyByEmail limits password reset mails per address. The body is restored for the handler.
func keyByEmail(c *gin.Context) string {
	buf, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return c.ClientIP()
	}
	c.Request.Body = io.NopCloser(bytes.NewBuffer(buf))

	var req models.ForgotPassword
	if err := json.Unmarshal(buf, &req); err != nil || req.Email == "" {
		return c.ClientIP()
	}
	return strings.ToLower(strings.TrimSpace(req.Email))
}

// keyByUser must run after Authorize.
func keyByUser(c *gin.Context) string {
	if id, ok := c.Get("userID"); ok {
		return fmt.Sprintf("user:%v", id)
	}
	return c.ClientIP()
}

// respondAndAbort calls response.JSON and aborts the Context
func respondAndAbort(c *gin.Context, message string, status int, data interface{}, e *errs.Error) {
	response.JSON(c, message, status, data, e)
	c.Abort()
}

// getTokenFromHeader returns the bearer token. Websocket clients may pass it as ?token=.
func getTokenFromHeader(c *gin.Context) string {
	authHeader := c.Request.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return c.Query("token")
}
