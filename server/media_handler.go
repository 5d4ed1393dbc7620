package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/server/response"
)

// handleLocalMedia serves uploads kept by the in-memory storage.
func (s *Server) handleLocalMedia() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimPrefix(c.Param("key"), "/")
		body, ok := s.LocalMedia.Get(key)
		if !ok {
			response.JSON(c, "file not found", http.StatusNotFound, nil, nil)
			return
		}
		c.Header("Cache-Control", "public, max-age=86400")
		c.Data(http.StatusOK, http.DetectContentType(body), body)
	}
}
