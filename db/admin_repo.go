package db

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
)

type AdminRepository interface {
	GetStats() (*models.DashboardStats, error)
	ListUsers(filter models.UserFilter) ([]models.User, int64, error)
	SetUserBlocked(userID uint, blocked bool) (*models.User, error)
}

type adminRepo struct {
	DB *gorm.DB
}

func NewAdminRepo(db *GormDB) AdminRepository {
	return &adminRepo{db.DB}
}

func (a *adminRepo) count(model interface{}, query string, args ...interface{}) (int64, error) {
	var n int64
	q := a.DB.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	err := q.Count(&n).Error
	return n, err
}

func (a *adminRepo) GetStats() (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	counts := []struct {
		dst   *int64
		model interface{}
		query string
		args  []interface{}
	}{
		{&stats.TotalUsers, &models.User{}, "", nil},
		{&stats.BlockedUsers, &models.User{}, "is_blocked = ?", []interface{}{true}},
		{&stats.Creators, &models.User{}, "creator_status = ?", []interface{}{models.CreatorStatusApproved}},
		{&stats.PendingCreators, &models.User{}, "creator_status = ?", []interface{}{models.CreatorStatusPending}},
		{&stats.ActiveTasks, &models.Task{}, "status = ?", []interface{}{models.TaskStatusActive}},
		{&stats.PendingTasks, &models.Task{}, "status = ?", []interface{}{models.TaskStatusPending}},
		{&stats.PendingSubmissions, &models.TaskSubmission{}, "status = ?", []interface{}{models.StatusPending}},
		{&stats.PendingWithdrawals, &models.Withdrawal{}, "status = ?", []interface{}{models.StatusPending}},
		{&stats.PendingCoinRequests, &models.CreatorCoinRequest{}, "status = ?", []interface{}{models.StatusPending}},
	}
	for _, c := range counts {
		n, err := a.count(c.model, c.query, c.args...)
		if err != nil {
			return nil, errors.Wrap(err, "dashboard stats")
		}
		*c.dst = n
	}

	if err := a.DB.Model(&models.User{}).Select("COALESCE(SUM(coins), 0)").Scan(&stats.CoinsInCirculation).Error; err != nil {
		return nil, errors.Wrap(err, "coins in circulation")
	}
	paid, err := NewWithdrawalRepo(&GormDB{a.DB}).SumPaidOut()
	if err != nil {
		return nil, errors.Wrap(err, "total paid out")
	}
	stats.TotalPaidOut = paid
	return stats, nil
}

func (a *adminRepo) ListUsers(filter models.UserFilter) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	q := a.DB.Model(&models.User{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(fullname) LIKE ? OR LOWER(username) LIKE ? OR telephone LIKE ?", like, like, like, like)
	}
	if filter.Blocked != nil {
		q = q.Where("is_blocked = ?", *filter.Blocked)
	}
	if filter.CreatorStatus != "" {
		q = q.Where("creator_status = ?", filter.CreatorStatus)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count users")
	}
	p := filter.Pagination.Normalize()
	if err := q.Preload("Role").Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list users")
	}
	return users, total, nil
}

func (a *adminRepo) SetUserBlocked(userID uint, blocked bool) (*models.User, error) {
	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Update("is_blocked", blocked)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrUserNotFound
	}
	var user models.User
	if err := a.DB.Preload("Role").First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
