package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleAdminStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		stats, err := s.AdminService.Stats()
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "stats retrieved successfully", http.StatusOK, stats, nil)
	}
}

func (s *Server) handleAdminListUsers() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.UserFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		users, err := s.AdminService.ListUsers(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "users retrieved successfully", http.StatusOK, users, nil)
	}
}

func (s *Server) handleAdminGetUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		user, err := s.AdminService.GetUser(userID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "user retrieved successfully", http.StatusOK, user, nil)
	}
}

func (s *Server) handleSetUserBlocked(blocked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		user, err := s.AdminService.SetUserBlocked(currentUser(c).ID, userID, blocked)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		message := "user unblocked"
		if blocked {
			message = "user blocked"
		}
		response.JSON(c, message, http.StatusOK, user, nil)
	}
}

func (s *Server) handleAdjustCoins() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		var req models.AdjustCoinsRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		user, err := s.WalletService.AdjustCoins(currentUser(c).ID, userID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "coins adjusted", http.StatusOK, user, nil)
	}
}

func (s *Server) handleAdminListTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TaskFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		tasks, err := s.TaskService.ListAllTasks(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "tasks retrieved successfully", http.StatusOK, tasks, nil)
	}
}

func (s *Server) handleAdminCreateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.TaskRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.TaskService.CreateTask(currentUser(c).ID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task created", http.StatusCreated, task, nil)
	}
}

func (s *Server) handleAdminUpdateTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		var req models.TaskRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.TaskService.UpdateTask(taskID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task updated", http.StatusOK, task, nil)
	}
}

func (s *Server) handleAdminDeleteTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		if err := s.TaskService.DeleteTask(taskID); err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task deleted", http.StatusOK, nil, nil)
	}
}

func (s *Server) handleAdminSetTaskActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.TaskService.SetTaskActive(taskID, active)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task updated", http.StatusOK, task, nil)
	}
}

// reviewReason reads the optional reason of an approve/reject request.
func reviewReason(c *gin.Context) (string, error) {
	if c.Request.ContentLength == 0 {
		return "", nil
	}
	var req models.ReviewRequest
	if err := decode(c, &req); err != nil {
		return "", err
	}
	return req.Reason, nil
}

func (s *Server) handleReviewCreatorTask(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		reason, err := reviewReason(c)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.TaskService.ReviewCreatorTask(currentUser(c).ID, taskID, approve, reason)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task reviewed", http.StatusOK, task, nil)
	}
}

func (s *Server) handleAdminListSubmissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.SubmissionFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		subs, err := s.TaskService.ListSubmissions(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "submissions retrieved successfully", http.StatusOK, subs, nil)
	}
}

func (s *Server) handleReviewSubmission(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		reason, err := reviewReason(c)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		sub, err := s.TaskService.ReviewSubmission(currentUser(c).ID, id, approve, reason)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "submission reviewed", http.StatusOK, sub, nil)
	}
}

func (s *Server) handleAdminListWithdrawals() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.WithdrawalFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		list, err := s.WalletService.ListWithdrawals(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawals retrieved successfully", http.StatusOK, list, nil)
	}
}

// handleProcessWithdrawal accepts JSON or multipart; approvals may carry a "screenshot".
func (s *Server) handleProcessWithdrawal(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		reason, err := reviewReason(c)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		screenshot, err := optionalFile(c, "screenshot")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		withdrawal, err := s.WalletService.ProcessWithdrawal(c.Request.Context(), currentUser(c).ID, id, approve, reason, screenshot)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawal processed", http.StatusOK, withdrawal, nil)
	}
}

func (s *Server) handleExportWithdrawals() gin.HandlerFunc {
	return func(c *gin.Context) {
		buf, err := s.WalletService.ExportWithdrawals(c.Query("status"))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		filename := fmt.Sprintf("withdrawals-%s.xlsx", time.Now().Format("20060102-150405"))
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
	}
}

func (s *Server) handleUpdateWithdrawalSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.WithdrawalSettingsRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		settings, err := s.WalletService.UpdateWithdrawalSettings(currentUser(c).ID, &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawal settings updated", http.StatusOK, settings, nil)
	}
}

func (s *Server) handleListCreatorApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.UserFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		users, err := s.CreatorService.ListApplications(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "creator applications retrieved successfully", http.StatusOK, users, nil)
	}
}

func (s *Server) handleReviewCreatorApplication(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		user, err := s.CreatorService.ReviewApplication(currentUser(c).ID, userID, approve)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "creator application reviewed", http.StatusOK, user, nil)
	}
}

func (s *Server) handleAdminListCoinRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.CoinRequestFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		list, err := s.CreatorService.ListCoinRequests(filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "coin requests retrieved successfully", http.StatusOK, list, nil)
	}
}

func (s *Server) handleProcessCoinRequest(approve bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		reason, err := reviewReason(c)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		req, err := s.CreatorService.ProcessCoinRequest(currentUser(c).ID, id, approve, reason)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "coin request processed", http.StatusOK, req, nil)
	}
}
