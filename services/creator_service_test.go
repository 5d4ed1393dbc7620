package services

import (
	"context"
	"testing"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
)

type fakeCreatorRepo struct {
	db.CreatorRepository
	applied []uint
}

func (f *fakeCreatorRepo) ApplyForCreator(userID uint) error {
	f.applied = append(f.applied, userID)
	return nil
}

type fakeCreatorTaskRepo struct {
	fakeTaskRepo
	created *models.Task
}

func (f *fakeCreatorTaskRepo) CreateCreatorTask(task *models.Task) (*models.Task, error) {
	task.ID = 11
	task.IsCreatorTask = true
	task.Status = models.TaskStatusPending
	budget, err := models.MulCoins(task.Reward, task.MaxCompletions)
	if err != nil {
		return nil, db.ErrInvalidBudget
	}
	task.Budget = budget
	f.created = task
	return task, nil
}

func newTestCreatorService(creators *fakeCreatorRepo, tasks *fakeCreatorTaskRepo, users ...*models.User) CreatorService {
	return NewCreatorService(creators, tasks, nil, newFakeAuthRepo(users...), nil, &fakeNotifier{}, &config.Config{CoinsPerRupee: 100})
}

func TestApply(t *testing.T) {
	tests := []struct {
		name    string
		status  string
		wantErr bool
	}{
		{"first application", models.CreatorStatusNone, false},
		{"reapply after rejection", models.CreatorStatusRejected, false},
		{"already pending", models.CreatorStatusPending, true},
		{"already creator", models.CreatorStatusApproved, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &models.User{Model: models.Model{ID: 4}, Email: "c@example.com", CreatorStatus: tt.status}
			creators := &fakeCreatorRepo{}
			svc := newTestCreatorService(creators, &fakeCreatorTaskRepo{}, user)

			_, err := svc.Apply(user)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && len(creators.applied) != 1 {
				t.Error("application not stored")
			}
		})
	}
}

func TestCreateCreatorTask(t *testing.T) {
	req := models.CreatorTaskRequest{
		TaskRequest:    models.TaskRequest{Title: "Follow me", Type: models.TaskTypeFollow, Reward: 20},
		MaxCompletions: 50,
	}
	tests := []struct {
		name       string
		user       models.User
		wantStatus int
	}{
		{"approved creator", models.User{CreatorStatus: models.CreatorStatusApproved, CreatorCoins: 1000}, 0},
		{"not a creator", models.User{CreatorStatus: models.CreatorStatusPending, CreatorCoins: 1000}, apiError.ErrNotCreator.Status},
		{"budget too small", models.User{CreatorStatus: models.CreatorStatusApproved, CreatorCoins: 999}, apiError.ErrInsufficientCoins.Status},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &fakeCreatorTaskRepo{}
			svc := newTestCreatorService(&fakeCreatorRepo{}, tasks)
			r := req

			task, err := svc.CreateTask(&tt.user, &r)
			if tt.wantStatus != 0 {
				apiErr, ok := err.(*apiError.Error)
				if !ok || apiErr.Status != tt.wantStatus {
					t.Fatalf("err = %v, want status %d", err, tt.wantStatus)
				}
				if tasks.created != nil {
					t.Error("task created despite error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTask() error = %v", err)
			}
			if task.Budget != 1000 || task.Status != models.TaskStatusPending || task.MaxCompletions != 50 {
				t.Errorf("task = %+v", task)
			}
		})
	}
}

func TestCreateCreatorTaskBudgetOverflow(t *testing.T) {
	tests := []struct {
		name           string
		reward         int64
		maxCompletions int64
	}{
		{"wraps negative", 9223372036854775800, 2},
		{"wraps past zero", 4611686018427387904, 4},
		{"above coin cap", models.MaxCoins, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks := &fakeCreatorTaskRepo{}
			svc := newTestCreatorService(&fakeCreatorRepo{}, tasks)
			creator := &models.User{CreatorStatus: models.CreatorStatusApproved}
			req := &models.CreatorTaskRequest{
				TaskRequest:    models.TaskRequest{Title: "Like me", Type: models.TaskTypeLike, Reward: tt.reward},
				MaxCompletions: tt.maxCompletions,
			}

			_, err := svc.CreateTask(creator, req)
			if err != db.ErrInvalidBudget {
				t.Fatalf("err = %v, want ErrInvalidBudget", err)
			}
			if tasks.created != nil {
				t.Error("task created despite overflowing budget")
			}
		})
	}
}

func TestRequestCoinsNeedsScreenshot(t *testing.T) {
	svc := newTestCreatorService(&fakeCreatorRepo{}, &fakeCreatorTaskRepo{})
	creator := &models.User{CreatorStatus: models.CreatorStatusApproved}
	_, err := svc.RequestCoins(context.Background(), creator, &models.CoinRequestForm{Coins: 100, TransactionRef: "UTR1"}, nil)
	if err != ErrScreenshotRequired {
		t.Errorf("err = %v, want ErrScreenshotRequired", err)
	}

	_, err = svc.RequestCoins(context.Background(), &models.User{}, &models.CoinRequestForm{Coins: 100}, nil)
	if err != apiError.ErrNotCreator {
		t.Errorf("err = %v, want ErrNotCreator", err)
	}
}
