package models

import "time"

const (
	TaskTypeWatchVideo = "watch_video"
	TaskTypeFollow     = "follow"
	TaskTypeLike       = "like"
	TaskTypeSubscribe  = "subscribe"
	TaskTypeUpload     = "upload"
)

const (
	TaskStatusPending   = "pending"
	TaskStatusActive    = "active"
	TaskStatusPaused    = "paused"
	TaskStatusCompleted = "completed"
	TaskStatusRejected  = "rejected"
	TaskStatusCancelled = "cancelled"
)

var taskTypes = map[string]bool{
	TaskTypeWatchVideo: true,
	TaskTypeFollow:     true,
	TaskTypeLike:       true,
	TaskTypeSubscribe:  true,
	TaskTypeUpload:     true,
}

func IsValidTaskType(t string) bool {
	return taskTypes[t]
}

// Task is a unit of work that pays Reward coins once per user.
// Creator tasks are funded up front: Budget = Reward * MaxCompletions.
type Task struct {
	Model
	Title           string     `json:"title" gorm:"not null"`
	Description     string     `json:"description"`
	Type            string     `json:"type" gorm:"index;not null"`
	Link            string     `json:"link"`
	ThumbnailURL    string     `json:"thumbnail_url,omitempty"`
	Reward          int64      `json:"reward" gorm:"not null"`
	RequiresProof   bool       `json:"requires_proof"`
	Status          string     `json:"status" gorm:"index;not null;default:active"`
	CreatedBy       uint       `json:"created_by"`
	IsCreatorTask   bool       `json:"is_creator_task"`
	MaxCompletions  int64      `json:"max_completions"`
	CompletedCount  int64      `json:"completed_count"`
	Budget          int64      `json:"budget"`
	Spent           int64      `json:"spent"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
}

// IsExpired reports whether the task stopped accepting completions before now.
func (t *Task) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && now.After(*t.ExpiresAt)
}

// IsAvailable reports whether a new completion slot can be taken at now.
func (t *Task) IsAvailable(now time.Time) bool {
	if t.Status != TaskStatusActive {
		return false
	}
	if t.IsExpired(now) {
		return false
	}
	return t.MaxCompletions == 0 || t.CompletedCount < t.MaxCompletions
}

// ReservedBudget is the part of the budget held by completions already taken.
func (t *Task) ReservedBudget() int64 {
	return t.Reward * t.CompletedCount
}

// UnreservedBudget is what a creator gets back on cancellation.
func (t *Task) UnreservedBudget() int64 {
	if !t.IsCreatorTask {
		return 0
	}
	left := t.Budget - t.ReservedBudget()
	if left < 0 {
		return 0
	}
	return left
}

// TakeSlot counts a new completion, closing the task when it is full.
func (t *Task) TakeSlot() {
	t.CompletedCount++
	if t.MaxCompletions > 0 && t.CompletedCount >= t.MaxCompletions {
		t.Status = TaskStatusCompleted
	}
}

// ReleaseSlot undoes TakeSlot for a rejected submission.
func (t *Task) ReleaseSlot() {
	if t.CompletedCount > 0 {
		t.CompletedCount--
	}
	if t.Status == TaskStatusCompleted && (t.MaxCompletions == 0 || t.CompletedCount < t.MaxCompletions) {
		t.Status = TaskStatusActive
	}
}

type TaskRequest struct {
	Title          string     `json:"title" form:"title" binding:"required,min=3" conform:"trim"`
	Description    string     `json:"description" form:"description" conform:"trim"`
	Type           string     `json:"type" form:"type" binding:"required,oneof=watch_video follow like subscribe upload"`
	Link           string     `json:"link" form:"link" binding:"omitempty,url" conform:"trim"`
	Reward         int64      `json:"reward" form:"reward" binding:"required,gt=0,max=1000000"`
	RequiresProof  bool       `json:"requires_proof" form:"requires_proof"`
	MaxCompletions int64      `json:"max_completions" form:"max_completions" binding:"gte=0,max=1000000"`
	ExpiresAt      *time.Time `json:"expires_at" form:"expires_at"`
}

type TaskFilter struct {
	Pagination
	Status    string     `form:"status"`
	Type      string     `form:"type"`
	CreatedBy uint       `form:"-"`
	Creator   *bool      `form:"creator"`
	OpenAt    *time.Time `form:"-"`
}

// TaskView is a task as seen by one user.
type TaskView struct {
	Task
	SubmissionStatus string `json:"submission_status,omitempty"`
}
