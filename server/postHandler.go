package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

// handleCreatePost expects a multipart form with "media" and an optional "caption".
func (s *Server) handleCreatePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		media, err := optionalFile(c, "media")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		post, err := s.PostService.CreatePost(c.Request.Context(), currentUser(c), c.PostForm("caption"), media)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "post created successfully", http.StatusCreated, post, nil)
	}
}

func (s *Server) handleGetFeed() gin.HandlerFunc {
	return func(c *gin.Context) {
		var page models.Pagination
		if err := decodeQuery(c, &page); err != nil {
			response.HandleErrors(c, err)
			return
		}
		posts, err := s.PostService.Feed(currentUser(c).ID, page)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "posts retrieved successfully", http.StatusOK, posts, nil)
	}
}

func (s *Server) handleGetPost() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		post, err := s.PostService.GetPost(postID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "post retrieved successfully", http.StatusOK, post, nil)
	}
}

// handleDeletePost serves both the owner route and the admin route.
func (s *Server) handleDeletePost() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if err := s.PostService.DeletePost(currentUser(c), postID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "post deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleListComments() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		var page models.Pagination
		if err := decodeQuery(c, &page); err != nil {
			response.HandleErrors(c, err)
			return
		}
		comments, err := s.PostService.ListComments(postID, page)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "comments retrieved successfully", http.StatusOK, comments, nil)
	}
}

func (s *Server) handleAddComment() gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		var req models.CommentRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		comment, err := s.PostService.AddComment(currentUser(c).ID, postID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "comment added", http.StatusCreated, comment, nil)
	}
}
