package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) handleListTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TaskFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		tasks, err := s.TaskService.ListTasks(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "tasks retrieved successfully", http.StatusOK, tasks, nil)
	}
}

func (s *Server) handleGetTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.TaskService.GetTask(currentUser(c).ID, taskID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task retrieved successfully", http.StatusOK, task, nil)
	}
}

// handleCompleteTask takes an optional multipart "proof" image.
func (s *Server) handleCompleteTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		proof, err := optionalFile(c, "proof")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		sub, err := s.TaskService.CompleteTask(c.Request.Context(), currentUser(c), taskID, proof)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		message := "task submitted for review"
		if sub.Status == models.StatusApproved {
			message = "task completed, coins credited"
		}
		response.JSON(c, message, http.StatusCreated, sub, nil)
	}
}

func (s *Server) handleListMySubmissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.SubmissionFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		subs, err := s.TaskService.ListMySubmissions(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "submissions retrieved successfully", http.StatusOK, subs, nil)
	}
}
