package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
)

// JSON writes the standard envelope: success, message, data and errors.
func JSON(c *gin.Context, message string, status int, data interface{}, err error) {
	var errMessage interface{}
	if err != nil {
		errMessage = err.Error()
		if message == "" {
			message = err.Error()
		}
	}
	c.JSON(status, gin.H{
		"success": err == nil && status < http.StatusBadRequest,
		"message": message,
		"data":    data,
		"errors":  errMessage,
	})
}

// HandleErrors picks the status for err and writes it.
func HandleErrors(c *gin.Context, err error) {
	var (
		apiErr        *errs.Error
		validationErr validator.ValidationErrors
	)
	switch {
	case errors.As(err, &apiErr):
		JSON(c, apiErr.Message, apiErr.Status, nil, apiErr)
	case errors.As(err, &validationErr):
		JSON(c, "", http.StatusBadRequest, nil, errors.New(models.TranslateValidationError(err)))
	case errors.Is(err, gorm.ErrRecordNotFound):
		JSON(c, "", http.StatusNotFound, nil, errs.ErrNotFound)
	default:
		logger.Error("request failed", "path", c.FullPath(), "error", err)
		JSON(c, "", http.StatusInternalServerError, nil, errs.ErrInternalServerError)
	}
}
