package models

// Notification represents notifications sent to users
type Notification struct {
	Model
	UserID  uint   `json:"user_id" gorm:"index;not null"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
	IsRead  bool   `json:"is_read" gorm:"default:false"`
}

const (
	NotifySubmission = "submission"
	NotifyWithdrawal = "withdrawal"
	NotifyCreator    = "creator"
	NotifyTask       = "task"
	NotifyWallet     = "wallet"
)
