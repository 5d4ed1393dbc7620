package errors

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
)

// Error is an error that carries the HTTP status it should be reported with.
type Error struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *Error) Error() string {
	return e.Message
}

func New(message string, status int) *Error {
	return &Error{
		Message: message,
		Status:  status,
	}
}

var (
	ErrBadRequest              = New("bad request", http.StatusBadRequest)
	ErrInternalServerError     = New("internal server error", http.StatusInternalServerError)
	ErrNotFound                = New("not found", http.StatusNotFound)
	ErrUnauthorized            = New("unauthorized", http.StatusUnauthorized)
	ErrForbidden               = New("forbidden", http.StatusForbidden)
	ErrInvalidPassword         = New("invalid email or password", http.StatusUnprocessableEntity)
	ErrBlockedUser             = New("this account has been blocked", http.StatusForbidden)
	ErrInsufficientCoins       = New("insufficient coins", http.StatusUnprocessableEntity)
	ErrInvalidTransition       = New("request has already been processed", http.StatusConflict)
	ErrAlreadySubmitted        = New("task already completed by this user", http.StatusConflict)
	ErrTaskUnavailable         = New("task is not available", http.StatusConflict)
	ErrInvalidWithdrawalAmount = New("withdrawal amount is not allowed", http.StatusBadRequest)
	ErrNotCreator              = New("creator access required", http.StatusForbidden)
	InActiveUserError          = New("user is inactive", http.StatusUnauthorized)
)

// GetUniqueContraintError turns a duplicate-key failure into a 409 naming the field.
func GetUniqueContraintError(err error) *Error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "email"):
		return New("email already in use", http.StatusConflict)
	case strings.Contains(msg, "phone"), strings.Contains(msg, "telephone"):
		return New("phone number already in use", http.StatusConflict)
	case strings.Contains(msg, "username"):
		return New("username already in use", http.StatusConflict)
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "already"):
		return New(msg, http.StatusConflict)
	}
	return New(msg, http.StatusBadRequest)
}

// ErrorHandler answers requests rejected by the rate limiter.
func ErrorHandler(c *gin.Context, info ratelimit.Info) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"success": false,
		"message": fmt.Sprintf("too many requests, try again in %s", time.Until(info.ResetTime).Round(time.Second)),
		"data":    nil,
		"errors":  "rate limit exceeded",
	})
}
