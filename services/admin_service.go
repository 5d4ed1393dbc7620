package services

import (
	"net/http"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
)

var ErrCannotBlockAdmin = apiError.New("admins cannot be blocked", http.StatusForbidden)

type AdminService interface {
	Stats() (*models.DashboardStats, error)
	ListUsers(filter models.UserFilter) (*models.PagedResult, error)
	GetUser(userID uint) (*models.User, error)
	SetUserBlocked(adminID, userID uint, blocked bool) (*models.User, error)
}

type adminService struct {
	Config    *config.Config
	adminRepo db.AdminRepository
	authRepo  db.AuthRepository
	notifier  NotificationService
}

func NewAdminService(adminRepo db.AdminRepository, authRepo db.AuthRepository, notifier NotificationService, conf *config.Config) AdminService {
	return &adminService{
		Config:    conf,
		adminRepo: adminRepo,
		authRepo:  authRepo,
		notifier:  notifier,
	}
}

func (a *adminService) Stats() (*models.DashboardStats, error) {
	return a.adminRepo.GetStats()
}

func (a *adminService) ListUsers(filter models.UserFilter) (*models.PagedResult, error) {
	users, total, err := a.adminRepo.ListUsers(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(users, total, filter.Pagination), nil
}

func (a *adminService) GetUser(userID uint) (*models.User, error) {
	return a.authRepo.FindUserByID(userID)
}

// SetUserBlocked blocks or unblocks a regular user. Blocked users cannot log in or call the API.
func (a *adminService) SetUserBlocked(adminID, userID uint, blocked bool) (*models.User, error) {
	if adminID == userID {
		return nil, apiError.New("you cannot block yourself", http.StatusBadRequest)
	}
	target, err := a.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	if target.IsAdmin() {
		return nil, ErrCannotBlockAdmin
	}
	user, err := a.adminRepo.SetUserBlocked(userID, blocked)
	if err != nil {
		return nil, err
	}
	logger.Info("user block changed", "admin_id", adminID, "user_id", userID, "blocked", blocked)
	if !blocked {
		a.notifier.Notify(user, models.NotifyWallet, "Account restored", "Your account has been unblocked.")
	}
	return user, nil
}
