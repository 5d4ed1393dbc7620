package server

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
)

// decode binds the request body (JSON or form) into v and validates it.
func decode(c *gin.Context, v interface{}) error {
	if err := c.ShouldBind(v); err != nil {
		var apiErr *errs.Error
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return errs.New("invalid request body: "+err.Error(), http.StatusBadRequest)
	}
	return nil
}

func decodeQuery(c *gin.Context, v interface{}) error {
	if err := c.ShouldBindQuery(v); err != nil {
		var apiErr *errs.Error
		if errors.As(err, &apiErr) {
			return apiErr
		}
		return errs.New("invalid query: "+err.Error(), http.StatusBadRequest)
	}
	return nil
}

// idParam reads a positive numeric path parameter.
func idParam(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errs.New("invalid "+name, http.StatusBadRequest)
	}
	return uint(id), nil
}

// optionalFile returns the uploaded file for field, or nil when none was sent.
func optionalFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errs.New("invalid upload: "+err.Error(), http.StatusBadRequest)
	}
	return fh, nil
}

// getValuesFromContext returns the access token and user stored by Authorize.
func getValuesFromContext(c *gin.Context) (string, *models.User, *errs.Error) {
	tokenI, ok := c.Get("access_token")
	if !ok {
		return "", nil, errs.New("forbidden", http.StatusForbidden)
	}
	userI, ok := c.Get("user")
	if !ok {
		return "", nil, errs.New("forbidden", http.StatusForbidden)
	}
	token, ok := tokenI.(string)
	if !ok {
		return "", nil, errs.ErrInternalServerError
	}
	user, ok := userI.(*models.User)
	if !ok {
		return "", nil, errs.ErrInternalServerError
	}
	return token, user, nil
}

// currentUser is the authenticated user; Authorize guarantees it is set.
func currentUser(c *gin.Context) *models.User {
	return c.MustGet("user").(*models.User)
}
