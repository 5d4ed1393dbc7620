package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) handleListNotifications() gin.HandlerFunc {
	return func(c *gin.Context) {
		var page models.Pagination
		if err := decodeQuery(c, &page); err != nil {
			response.HandleErrors(c, err)
			return
		}
		list, unread, err := s.NotificationService.ListNotifications(currentUser(c).ID, page)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "notifications retrieved successfully", http.StatusOK, gin.H{
			"notifications": list,
			"unread":        unread,
		}, nil)
	}
}

func (s *Server) handleMarkNotificationRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if err := s.NotificationService.MarkRead(currentUser(c).ID, id); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "notification marked as read", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleMarkAllNotificationsRead() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := s.NotificationService.MarkAllRead(currentUser(c).ID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "all notifications marked as read", http.StatusOK, nil, nil)
	}
}
