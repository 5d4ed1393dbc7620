package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) handleLikePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		post, err := s.PostService.LikePost(currentUser(c).ID, postID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "post liked", http.StatusOK, post, nil)
	}
}

func (s *Server) handleUnlikePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		post, err := s.PostService.UnlikePost(currentUser(c).ID, postID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "post unliked", http.StatusOK, post, nil)
	}
}
