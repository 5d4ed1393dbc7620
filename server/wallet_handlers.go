package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/techagentng/earnly/models"
	"github.com/techagentng/earnly/server/response"
)

func (s *Server) handleGetBalance() gin.HandlerFunc {
	return func(c *gin.Context) {
		balance, err := s.WalletService.GetBalance(currentUser(c).ID)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "balance retrieved successfully", http.StatusOK, balance, nil)
	}
}

func (s *Server) handleListTransactions() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.TransactionFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		txs, err := s.WalletService.ListTransactions(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "transactions retrieved successfully", http.StatusOK, txs, nil)
	}
}

func (s *Server) handleGetWithdrawalSettings() gin.HandlerFunc {
	return func(c *gin.Context) {
		settings, err := s.WalletService.GetWithdrawalSettings()
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawal settings retrieved successfully", http.StatusOK, settings, nil)
	}
}

func (s *Server) handleRequestWithdrawal() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.WithdrawalRequest
		if err := decode(c, &req); err != nil {
			response.HandleErrors(c, err)
			return
		}
		withdrawal, err := s.WalletService.RequestWithdrawal(currentUser(c), &req)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawal requested", http.StatusCreated, withdrawal, nil)
	}
}

func (s *Server) handleListMyWithdrawals() gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter models.WithdrawalFilter
		if err := decodeQuery(c, &filter); err != nil {
			response.HandleErrors(c, err)
			return
		}
		list, err := s.WalletService.ListMyWithdrawals(currentUser(c).ID, filter)
		if err != nil {
			response.HandleErrors(c, err)
			return
		}
		response.JSON(c, "withdrawals retrieved successfully", http.StatusOK, list, nil)
	}
}
