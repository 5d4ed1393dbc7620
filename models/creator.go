package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatorCoinRequest is a creator paying real money for creator wallet coins.
type CreatorCoinRequest struct {
	Model
	UserID               uint            `json:"user_id" gorm:"index;not null"`
	User                 *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Coins                int64           `json:"coins" gorm:"not null"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentScreenshotURL string          `json:"payment_screenshot_url"`
	TransactionRef       string          `json:"transaction_ref"`
	Status               string          `json:"status" gorm:"index;not null;default:pending"`
	RejectionReason      string          `json:"rejection_reason,omitempty"`
	ProcessedBy          *uint           `json:"processed_by,omitempty"`
	ProcessedAt          *time.Time      `json:"processed_at,omitempty"`
}

type CoinRequestFilter struct {
	Pagination
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
}

type CreatorWallet struct {
	CreatorCoins int64           `json:"creator_coins"`
	Value        decimal.Decimal `json:"value"`
	ActiveTasks  int64           `json:"active_tasks"`
}

type CoinRequestForm struct {
	Coins          int64  `form:"coins" binding:"required,gt=0,max=100000000000"`
	TransactionRef string `form:"transaction_ref" binding:"required" conform:"trim"`
}

type CreatorTaskRequest struct {
	TaskRequest
	MaxCompletions int64 `json:"max_completions" form:"max_completions" binding:"required,gt=0,max=1000000"`
}
