package models

import "time"

const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// TaskSubmission is one user's completion of one task.
type TaskSubmission struct {
	Model
	TaskID          uint       `json:"task_id" gorm:"uniqueIndex:idx_submission_task_user;not null"`
	UserID          uint       `json:"user_id" gorm:"uniqueIndex:idx_submission_task_user;not null;index"`
	Task            *Task      `json:"task,omitempty" gorm:"foreignKey:TaskID"`
	User            *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	ProofURL        string     `json:"proof_url,omitempty"`
	Status          string     `json:"status" gorm:"index;not null;default:pending"`
	Reward          int64      `json:"reward"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ReviewedBy      *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time `json:"reviewed_at,omitempty"`
}

type SubmissionFilter struct {
	Pagination
	Status string `form:"status"`
	TaskID uint   `form:"task_id"`
	UserID uint   `form:"user_id"`
}

type ReviewRequest struct {
	Reason string `json:"reason" form:"reason" conform:"trim"`
}
