package db

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/techagentng/earnly/models"
)

func TestCreateUserBonuses(t *testing.T) {
	tests := []struct {
		name         string
		bonus        func(referrer uint) SignupBonus
		wantCoins    int64
		wantReferrer int64
		wantLedger   int
	}{
		{
			name:       "no bonus",
			bonus:      func(uint) SignupBonus { return SignupBonus{} },
			wantLedger: 0,
		},
		{
			name:       "signup bonus",
			bonus:      func(uint) SignupBonus { return SignupBonus{SignupCoins: 100} },
			wantCoins:  100,
			wantLedger: 1,
		},
		{
			name: "referral pays both sides",
			bonus: func(referrer uint) SignupBonus {
				return SignupBonus{ReferrerID: &referrer, SignupCoins: 100, ReferralCoins: 50}
			},
			wantCoins:    100,
			wantReferrer: 50,
			wantLedger:   1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newTestDB(t)
			referrer := seedUser(t, g, "referrer@example.com", 0, 0)
			repo := NewAuthRepo(g)

			user, err := repo.CreateUser(&models.User{
				Email:        "new@example.com",
				Username:     "newbie",
				ReferralCode: "NEWBIE01",
			}, tt.bonus(referrer.ID))
			if err != nil {
				t.Fatalf("CreateUser() error = %v", err)
			}
			if user.Role.Name != models.RoleUser || user.CreatorStatus != models.CreatorStatusNone {
				t.Errorf("role/creator status = %s/%s", user.Role.Name, user.CreatorStatus)
			}
			if user.Coins != tt.wantCoins || user.TotalEarned != tt.wantCoins {
				t.Errorf("coins/earned = %d/%d, want %d", user.Coins, user.TotalEarned, tt.wantCoins)
			}

			txs := ledger(t, g, user.ID)
			if len(txs) != tt.wantLedger {
				t.Fatalf("new user ledger rows = %d, want %d", len(txs), tt.wantLedger)
			}
			if tt.wantLedger > 0 && (txs[0].Type != models.TxBonus || txs[0].Reference != reference("signup", user.ID)) {
				t.Errorf("signup row = %+v", txs[0])
			}

			ref := reloadUser(t, g, referrer.ID)
			if ref.Coins != tt.wantReferrer {
				t.Errorf("referrer coins = %d, want %d", ref.Coins, tt.wantReferrer)
			}
			refTxs := ledger(t, g, referrer.ID)
			if tt.wantReferrer == 0 {
				if len(refTxs) != 0 {
					t.Errorf("referrer ledger = %+v", refTxs)
				}
				return
			}
			if len(refTxs) != 1 || refTxs[0].Type != models.TxReferral || refTxs[0].Reference != reference("referral", user.ID) {
				t.Errorf("referrer ledger = %+v", refTxs)
			}
			if user.ReferredBy == nil || *user.ReferredBy != referrer.ID {
				t.Errorf("referred by = %v, want %d", user.ReferredBy, referrer.ID)
			}
		})
	}
}

func TestCreateUserRollsBackOnUnknownReferrer(t *testing.T) {
	g := newTestDB(t)
	repo := NewAuthRepo(g)
	missing := uint(404)

	_, err := repo.CreateUser(&models.User{Email: "new@example.com", ReferralCode: "NEWBIE01"},
		SignupBonus{ReferrerID: &missing, SignupCoins: 100, ReferralCoins: 50})
	if err == nil {
		t.Fatal("CreateUser() with a missing referrer succeeded")
	}
	if _, err := repo.FindUserByEmail("new@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("user left behind after rollback: err = %v", err)
	}
	var n int64
	g.DB.Model(&models.Transaction{}).Count(&n)
	if n != 0 {
		t.Errorf("ledger rows = %d, want 0", n)
	}
}

func TestBlacklist(t *testing.T) {
	g := newTestDB(t)
	repo := NewAuthRepo(g)

	if err := repo.AddToBlackList(&models.Blacklist{Token: "  abc.def.ghi \n"}); err != nil {
		t.Fatalf("AddToBlackList() error = %v", err)
	}
	if !repo.IsTokenInBlacklist("abc.def.ghi") {
		t.Error("trimmed token not found")
	}
	if repo.IsTokenInBlacklist("other") {
		t.Error("unknown token reported as blacklisted")
	}
}
