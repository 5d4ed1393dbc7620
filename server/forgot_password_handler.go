package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) HandleForgotPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ForgotPassword
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if apiErr := s.AuthService.SendEmailForPasswordReset(&req); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "if the email is registered, a reset link has been sent", http.StatusOK, nil, nil)
	}
}

func (s *Server) ResetPassword() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ResetPassword
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		if apiErr := s.AuthService.ResetPassword(&req, c.Param("token")); apiErr != nil {
			response.JSON(c, "", apiErr.Status, nil, apiErr)
			return
		}
		response.JSON(c, "password reset successfully", http.StatusOK, nil, nil)
	}
}
