package db

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens a migrated database in a temp dir. Row locks are dropped by the
// sqlite dialect, so a single connection keeps transactions serialized.
func newTestDB(t *testing.T) *GormDB {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "earnly.db") + "?_pragma=foreign_keys(1)"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := migrate(gdb); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return &GormDB{DB: gdb}
}

// seedUser inserts a user holding the given balances.
func seedUser(t *testing.T, g *GormDB, email string, coins, creatorCoins int64) *models.User {
	t.Helper()
	var role models.Role
	if err := g.DB.Where("name = ?", models.RoleUser).First(&role).Error; err != nil {
		t.Fatalf("find role: %v", err)
	}
	var n int64
	g.DB.Model(&models.User{}).Count(&n)
	user := &models.User{
		Email:         email,
		Username:      email,
		RoleID:        role.ID,
		ReferralCode:  fmt.Sprintf("CODE%04d", n+1),
		CreatorStatus: models.CreatorStatusApproved,
		Coins:         coins,
		CreatorCoins:  creatorCoins,
	}
	if err := g.DB.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedTask(t *testing.T, g *GormDB, task models.Task) *models.Task {
	t.Helper()
	if task.Title == "" {
		task.Title = "Watch the launch video"
	}
	if task.Type == "" {
		task.Type = models.TaskTypeWatchVideo
	}
	if task.Status == "" {
		task.Status = models.TaskStatusActive
	}
	if err := g.DB.Create(&task).Error; err != nil {
		t.Fatalf("create task: %v", err)
	}
	return &task
}

func reloadUser(t *testing.T, g *GormDB, id uint) *models.User {
	t.Helper()
	var user models.User
	if err := g.DB.First(&user, id).Error; err != nil {
		t.Fatalf("reload user %d: %v", id, err)
	}
	return &user
}

func reloadTask(t *testing.T, g *GormDB, id uint) *models.Task {
	t.Helper()
	var task models.Task
	if err := g.DB.First(&task, id).Error; err != nil {
		t.Fatalf("reload task %d: %v", id, err)
	}
	return &task
}

func ledger(t *testing.T, g *GormDB, userID uint) []models.Transaction {
	t.Helper()
	var txs []models.Transaction
	if err := g.DB.Where("user_id = ?", userID).Order("id").Find(&txs).Error; err != nil {
		t.Fatalf("list ledger: %v", err)
	}
	return txs
}
