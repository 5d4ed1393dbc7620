package db

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm/clause"
)

func TestCreateSubmission(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	tests := []struct {
		name    string
		task    models.Task
		own     bool
		wantErr error
	}{
		{"open task", models.Task{Reward: 25, MaxCompletions: 3}, false, nil},
		{"unlimited task", models.Task{Reward: 25, MaxCompletions: 0}, false, nil},
		{"paused task", models.Task{Reward: 25, Status: models.TaskStatusPaused}, false, errs.ErrTaskUnavailable},
		{"expired task", models.Task{Reward: 25, ExpiresAt: &past}, false, errs.ErrTaskUnavailable},
		{"full task", models.Task{Reward: 25, MaxCompletions: 1, CompletedCount: 1}, false, errs.ErrTaskUnavailable},
		{"creator's own task", models.Task{Reward: 25, IsCreatorTask: true}, true, errs.ErrTaskUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestDB(t)
			creator := seedUser(t, g, "creator@example.com", 0, 0)
			worker := seedUser(t, g, "worker@example.com", 0, 0)
			tt.task.CreatedBy = creator.ID
			task := seedTask(t, g, tt.task)

			userID := worker.ID
			if tt.own {
				userID = creator.ID
			}
			sub, err := NewSubmissionRepo(g).CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: userID}, false)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("CreateSubmission() err = %v, want %v", err, tt.wantErr)
			}
			stored := reloadTask(t, g, task.ID)
			if tt.wantErr != nil {
				if stored.CompletedCount != tt.task.CompletedCount {
					t.Errorf("completed count = %d, want %d", stored.CompletedCount, tt.task.CompletedCount)
				}
				return
			}
			if sub.Status != models.StatusPending || sub.Reward != 25 {
				t.Errorf("submission = %+v", sub)
			}
			if stored.CompletedCount != 1 {
				t.Errorf("completed count = %d, want 1", stored.CompletedCount)
			}
		})
	}
}

func TestCreateSubmissionOncePerUser(t *testing.T) {
	g := newTestDB(t)
	worker := seedUser(t, g, "worker@example.com", 0, 0)
	task := seedTask(t, g, models.Task{Reward: 10, MaxCompletions: 5})
	repo := NewSubmissionRepo(g)

	first, err := repo.CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}, false)
	if err != nil {
		t.Fatalf("first CreateSubmission() error = %v", err)
	}
	if _, err := repo.CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}, false); !errors.Is(err, errs.ErrAlreadySubmitted) {
		t.Fatalf("second CreateSubmission() err = %v, want ErrAlreadySubmitted", err)
	}

	if err := g.DB.Delete(&models.TaskSubmission{}, first.ID).Error; err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	if _, err := repo.CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}, false); !errors.Is(err, errs.ErrAlreadySubmitted) {
		t.Fatalf("after soft delete err = %v, want ErrAlreadySubmitted", err)
	}
	if got := reloadTask(t, g, task.ID).CompletedCount; got != 1 {
		t.Errorf("completed count = %d, want 1", got)
	}
}

func TestSubmissionUniqueIndex(t *testing.T) {
	g := newTestDB(t)
	worker := seedUser(t, g, "worker@example.com", 0, 0)
	task := seedTask(t, g, models.Task{Reward: 10})

	if err := g.DB.Create(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}).Error; err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := g.DB.Create(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}).Error; err == nil {
		t.Fatal("duplicate (task, user) row was inserted")
	}

	dup := &models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}
	if err := g.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(dup).Error; err != nil {
		t.Fatalf("insert with ON CONFLICT DO NOTHING: %v", err)
	}
	if dup.ID != 0 {
		t.Errorf("conflicting insert got id %d, want 0", dup.ID)
	}
	var n int64
	g.DB.Model(&models.TaskSubmission{}).Where("task_id = ? AND user_id = ?", task.ID, worker.ID).Count(&n)
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

func TestCreateSubmissionAutoApprove(t *testing.T) {
	g := newTestDB(t)
	worker := seedUser(t, g, "worker@example.com", 5, 0)
	task := seedTask(t, g, models.Task{Reward: 30, MaxCompletions: 1})

	sub, err := NewSubmissionRepo(g).CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}, true)
	if err != nil {
		t.Fatalf("CreateSubmission() error = %v", err)
	}
	if sub.Status != models.StatusApproved || sub.ReviewedAt == nil {
		t.Errorf("submission = %+v", sub)
	}

	user := reloadUser(t, g, worker.ID)
	if user.Coins != 35 || user.TotalEarned != 30 {
		t.Errorf("coins/earned = %d/%d, want 35/30", user.Coins, user.TotalEarned)
	}
	stored := reloadTask(t, g, task.ID)
	if stored.Spent != 30 || stored.Status != models.TaskStatusCompleted {
		t.Errorf("task spent/status = %d/%s", stored.Spent, stored.Status)
	}
	txs := ledger(t, g, worker.ID)
	if len(txs) != 1 || txs[0].Type != models.TxEarned || txs[0].Reference != reference("submission", sub.ID) {
		t.Errorf("ledger = %+v", txs)
	}
}

func TestReviewSubmission(t *testing.T) {
	tests := []struct {
		name          string
		approve       bool
		wantStatus    string
		wantCoins     int64
		wantCompleted int64
		wantTask      string
	}{
		{"approve credits the reward", true, models.StatusApproved, 40, 1, models.TaskStatusCompleted},
		{"reject frees the slot", false, models.StatusRejected, 0, 0, models.TaskStatusActive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestDB(t)
			admin := seedUser(t, g, "admin@example.com", 0, 0)
			worker := seedUser(t, g, "worker@example.com", 0, 0)
			task := seedTask(t, g, models.Task{Reward: 40, MaxCompletions: 1})
			repo := NewSubmissionRepo(g)

			sub, err := repo.CreateSubmission(&models.TaskSubmission{TaskID: task.ID, UserID: worker.ID}, false)
			if err != nil {
				t.Fatalf("CreateSubmission() error = %v", err)
			}
			reviewed, err := repo.ReviewSubmission(sub.ID, admin.ID, tt.approve, "blurry proof")
			if err != nil {
				t.Fatalf("ReviewSubmission() error = %v", err)
			}
			if reviewed.Status != tt.wantStatus || reviewed.ReviewedBy == nil || *reviewed.ReviewedBy != admin.ID {
				t.Errorf("reviewed = %+v", reviewed)
			}
			if got := reloadUser(t, g, worker.ID).Coins; got != tt.wantCoins {
				t.Errorf("worker coins = %d, want %d", got, tt.wantCoins)
			}
			stored := reloadTask(t, g, task.ID)
			if stored.CompletedCount != tt.wantCompleted || stored.Status != tt.wantTask {
				t.Errorf("task completed/status = %d/%s, want %d/%s", stored.CompletedCount, stored.Status, tt.wantCompleted, tt.wantTask)
			}

			for _, again := range []bool{true, false} {
				if _, err := repo.ReviewSubmission(sub.ID, admin.ID, again, ""); !errors.Is(err, errs.ErrInvalidTransition) {
					t.Errorf("second review (approve=%v) err = %v, want 409", again, err)
				}
			}
			if got := reloadUser(t, g, worker.ID).Coins; got != tt.wantCoins {
				t.Errorf("coins after second review = %d, want %d", got, tt.wantCoins)
			}
		})
	}
}

func TestReviewSubmissionNotFound(t *testing.T) {
	g := newTestDB(t)
	if _, err := NewSubmissionRepo(g).ReviewSubmission(99, 1, true, ""); !errors.Is(err, ErrSubmissionNotFound) {
		t.Fatalf("err = %v, want ErrSubmissionNotFound", err)
	}
}
