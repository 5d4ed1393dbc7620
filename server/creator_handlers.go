package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) handleApplyForCreator() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := s.CreatorService.Apply(currentUser(c))
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "creator application submitted", http.StatusOK, gin.H{"creator_status": user.CreatorStatus}, nil)
	}
}

func (s *Server) handleCreatorStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		response.JSON(c, "creator status retrieved", http.StatusOK, gin.H{
			"creator_status": user.CreatorStatus,
			"creator_coins":  user.CreatorCoins,
		}, nil)
	}
}

func (s *Server) handleCreatorWallet() gin.HandlerFunc {
	return func(c *gin.Context) {
		wallet, err := s.CreatorService.GetWallet(currentUser(c).ID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "creator wallet retrieved successfully", http.StatusOK, wallet, nil)
	}
}

func (s *Server) handleCreatorTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TransactionFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		txs, err := s.CreatorService.ListWalletTransactions(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "creator transactions retrieved successfully", http.StatusOK, txs, nil)
	}
}

// handleRequestCreatorCoins expects coins, transaction_ref and a "screenshot" file.
func (s *Server) handleRequestCreatorCoins() gin.HandlerFunc {
	return func(c *gin.Context) {
		var form models.CoinRequestForm
		if err := decode(c, &form); err != nil {
			response.HandleErrors(c, err)
			return
		}
		screenshot, err := optionalFile(c, "screenshot")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		req, err := s.CreatorService.RequestCoins(c.Request.Context(), currentUser(c), &form, screenshot)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "coin request submitted", http.StatusCreated, req, nil)
	}
}

func (s *Server) handleListMyCoinRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.CoinRequestFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		list, err := s.CreatorService.ListMyCoinRequests(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "coin requests retrieved successfully", http.StatusOK, list, nil)
	}
}

func (s *Server) handleCreateCreatorTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.CreatorTaskRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.CreatorService.CreateTask(currentUser(c), &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task submitted for approval", http.StatusCreated, task, nil)
	}
}

func (s *Server) handleListCreatorTasks() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TaskFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		tasks, err := s.CreatorService.ListMyTasks(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "tasks retrieved successfully", http.StatusOK, tasks, nil)
	}
}

func (s *Server) handleSetCreatorTaskActive(active bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, err := s.CreatorService.SetTaskActive(currentUser(c).ID, taskID, active)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task updated", http.StatusOK, task, nil)
	}
}

func (s *Server) handleCancelCreatorTask() gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := idParam(c, "id")
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		task, refund, err := s.CreatorService.CancelTask(currentUser(c).ID, taskID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "task cancelled", http.StatusOK, gin.H{"task": task, "refunded_coins": refund}, nil)
	}
}
