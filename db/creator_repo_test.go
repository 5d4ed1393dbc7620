package db

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
)

func TestProcessCoinRequest(t *testing.T) {
	tests := []struct {
		name        string
		approve     bool
		wantStatus  string
		wantCreator int64
	}{
		{"approve credits the creator wallet", true, models.StatusApproved, 5000},
		{"reject leaves the wallet alone", false, models.StatusRejected, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestDB(t)
			admin := seedUser(t, g, "admin@example.com", 0, 0)
			creator := seedUser(t, g, "creator@example.com", 0, 0)
			repo := NewCreatorRepo(g)

			req := &models.CreatorCoinRequest{
				UserID:         creator.ID,
				Coins:          5000,
				Amount:         decimal.NewFromInt(50),
				TransactionRef: "UTR1234",
			}
			if err := repo.CreateCoinRequest(req); err != nil {
				t.Fatalf("CreateCoinRequest() error = %v", err)
			}
			processed, err := repo.ProcessCoinRequest(req.ID, admin.ID, tt.approve, "payment not received")
			if err != nil {
				t.Fatalf("ProcessCoinRequest() error = %v", err)
			}
			if processed.Status != tt.wantStatus || processed.ProcessedBy == nil {
				t.Errorf("processed = %+v", processed)
			}
			stored := reloadUser(t, g, creator.ID)
			if stored.CreatorCoins != tt.wantCreator || stored.Coins != 0 {
				t.Errorf("creator/coins = %d/%d, want %d/0", stored.CreatorCoins, stored.Coins, tt.wantCreator)
			}

			for _, again := range []bool{true, false} {
				if _, err := repo.ProcessCoinRequest(req.ID, admin.ID, again, ""); !errors.Is(err, errs.ErrInvalidTransition) {
					t.Errorf("second process (approve=%v) err = %v, want 409", again, err)
				}
			}
			if got := reloadUser(t, g, creator.ID).CreatorCoins; got != tt.wantCreator {
				t.Errorf("creator coins after second process = %d, want %d", got, tt.wantCreator)
			}
		})
	}
}

func TestProcessCoinRequestNotFound(t *testing.T) {
	g := newTestDB(t)
	if _, err := NewCreatorRepo(g).ProcessCoinRequest(7, 1, true, ""); !errors.Is(err, ErrCoinRequestNotFound) {
		t.Fatalf("err = %v, want ErrCoinRequestNotFound", err)
	}
}

func TestCreatorApplication(t *testing.T) {
	g := newTestDB(t)
	user := seedUser(t, g, "asha@example.com", 0, 0)
	if err := g.DB.Model(user).Update("creator_status", models.CreatorStatusNone).Error; err != nil {
		t.Fatalf("reset status: %v", err)
	}
	repo := NewCreatorRepo(g)

	if err := repo.ApplyForCreator(user.ID); err != nil {
		t.Fatalf("ApplyForCreator() error = %v", err)
	}
	if err := repo.ApplyForCreator(user.ID); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Fatalf("second ApplyForCreator() err = %v, want 409", err)
	}
	pending, total, err := repo.ListCreatorApplications(models.UserFilter{})
	if err != nil || total != 1 || len(pending) != 1 {
		t.Fatalf("ListCreatorApplications() = %d rows, total %d, err %v", len(pending), total, err)
	}

	approved, err := repo.ReviewCreatorApplication(user.ID, true)
	if err != nil {
		t.Fatalf("ReviewCreatorApplication() error = %v", err)
	}
	if !approved.IsCreator() {
		t.Errorf("creator status = %s, want approved", approved.CreatorStatus)
	}
	if _, err := repo.ReviewCreatorApplication(user.ID, false); !errors.Is(err, errs.ErrInvalidTransition) {
		t.Errorf("second review err = %v, want 409", err)
	}
}
