package models

import "github.com/shopspring/decimal"

type DashboardStats struct {
	TotalUsers          int64           `json:"total_users"`
	BlockedUsers        int64           `json:"blocked_users"`
	Creators            int64           `json:"creators"`
	PendingCreators     int64           `json:"pending_creators"`
	ActiveTasks         int64           `json:"active_tasks"`
	PendingTasks        int64           `json:"pending_tasks"`
	PendingSubmissions  int64           `json:"pending_submissions"`
	PendingWithdrawals  int64           `json:"pending_withdrawals"`
	PendingCoinRequests int64           `json:"pending_coin_requests"`
	CoinsInCirculation  int64           `json:"coins_in_circulation"`
	TotalPaidOut        decimal.Decimal `json:"total_paid_out"`
}

type UserFilter struct {
	Pagination
	Search        string `form:"search"`
	Blocked       *bool  `form:"blocked"`
	CreatorStatus string `form:"creator_status"`
}

type AdjustCoinsRequest struct {
	Coins       int64  `json:"coins" binding:"required,min=-100000000000,max=100000000000"`
	Description string `json:"description" binding:"required" conform:"trim"`
}

type WalletBalance struct {
	Coins          int64           `json:"coins"`
	Value          decimal.Decimal `json:"value"`
	TotalEarned    int64           `json:"total_earned"`
	TotalWithdrawn int64           `json:"total_withdrawn"`
	CreatorCoins   int64           `json:"creator_coins"`
	CoinsPerRupee  int64           `json:"coins_per_rupee"`
}
