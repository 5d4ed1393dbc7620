package db

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errs.New("user not found", http.StatusNotFound)

// SignupBonus describes the coins granted when an account is created.
type SignupBonus struct {
	ReferrerID    *uint
	SignupCoins   int64
	ReferralCoins int64
}

type AuthRepository interface {
	CreateUser(user *models.User, bonus SignupBonus) (*models.User, error)
	IsEmailExist(email string) error
	IsPhoneExist(phone string) error
	IsReferralCodeTaken(code string) (bool, error)
	FindUserByEmail(email string) (*models.User, error)
	FindUserByID(id uint) (*models.User, error)
	FindUserByReferralCode(code string) (*models.User, error)
	EditUserProfile(userID uint, userDetails *models.EditProfileRequest) error
	UpsertUserImage(userID uint, filepath string) error
	UpdatePassword(userID uint, hashedPassword string) error
	UpdateFCMToken(userID uint, token string) error
	AddToBlackList(blacklist *models.Blacklist) error
	IsTokenInBlacklist(token string) bool
	FindRoleByID(roleID uuid.UUID) (*models.Role, error)
	FindRoleByName(name string) (*models.Role, error)
}

type authRepo struct {
	DB *gorm.DB
}

func NewAuthRepo(db *GormDB) AuthRepository {
	return &authRepo{db.DB}
}

// CreateUser inserts the user and pays signup and referral bonuses in the same transaction.
func (a *authRepo) CreateUser(user *models.User, bonus SignupBonus) (*models.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}

	err := a.DB.Transaction(func(tx *gorm.DB) error {
		if user.RoleID == uuid.Nil {
			var defaultRole models.Role
			if err := tx.Where("name = ?", models.RoleUser).First(&defaultRole).Error; err != nil {
				return errors.Wrap(err, "find default role")
			}
			user.RoleID = defaultRole.ID
		}
		if user.CreatorStatus == "" {
			user.CreatorStatus = models.CreatorStatusNone
		}
		user.ReferredBy = bonus.ReferrerID

		if err := tx.Create(user).Error; err != nil {
			return errors.Wrap(err, "create user")
		}

		if bonus.SignupCoins > 0 {
			if _, err := applyCoins(tx, user.ID, models.Transaction{
				Type:        models.TxBonus,
				Coins:       bonus.SignupCoins,
				Description: "Welcome bonus",
				Reference:   reference("signup", user.ID),
			}); err != nil {
				return err
			}
		}

		if bonus.ReferrerID != nil && bonus.ReferralCoins > 0 {
			if _, err := applyCoins(tx, *bonus.ReferrerID, models.Transaction{
				Type:        models.TxReferral,
				Coins:       bonus.ReferralCoins,
				Description: fmt.Sprintf("Referral bonus for inviting %s", user.Username),
				Reference:   reference("referral", user.ID),
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("CreateUser failed", "email", user.Email, "error", err)
		return nil, err
	}

	return a.FindUserByID(user.ID)
}

func (a *authRepo) IsEmailExist(email string) error {
	var count int64
	err := a.DB.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm count error")
	}
	if count > 0 {
		return errors.New("email already in use")
	}
	return nil
}

func (a *authRepo) IsPhoneExist(phone string) error {
	if phone == "" {
		return nil
	}
	var count int64
	err := a.DB.Model(&models.User{}).Where("telephone = ?", phone).Count(&count).Error
	if err != nil {
		return errors.Wrap(err, "gorm.count error")
	}
	if count > 0 {
		return fmt.Errorf("phone number already in use")
	}
	return nil
}

func (a *authRepo) IsReferralCodeTaken(code string) (bool, error) {
	var count int64
	if err := a.DB.Unscoped().Model(&models.User{}).Where("referral_code = ?", code).Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "count referral code")
	}
	return count > 0, nil
}

func (a *authRepo) FindUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := a.DB.Preload("Role").Where("email = ?", strings.ToLower(email)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	return &user, nil
}

func (a *authRepo) FindUserByID(id uint) (*models.User, error) {
	var user models.User
	err := a.DB.Preload("Role").Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) FindUserByReferralCode(code string) (*models.User, error) {
	var user models.User
	err := a.DB.Where("referral_code = ?", strings.ToUpper(code)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (a *authRepo) EditUserProfile(userID uint, userDetails *models.EditProfileRequest) error {
	updates := map[string]interface{}{}
	if userDetails.Fullname != "" {
		updates["fullname"] = userDetails.Fullname
	}
	if userDetails.Username != "" {
		updates["username"] = userDetails.Username
	}
	if userDetails.Telephone != "" {
		updates["telephone"] = userDetails.Telephone
	}
	if len(updates) == 0 {
		return nil
	}
	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (a *authRepo) UpsertUserImage(userID uint, filepath string) error {
	result := a.DB.Model(&models.User{}).Where("id = ?", userID).Update("thumb_nail_url", filepath)
	if result.Error != nil {
		logger.Error("Error updating user thumbnail URL", "user_id", userID, "error", result.Error)
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (a *authRepo) UpdatePassword(userID uint, hashedPassword string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("hashed_password", hashedPassword).Error
}

func (a *authRepo) UpdateFCMToken(userID uint, token string) error {
	return a.DB.Model(&models.User{}).Where("id = ?", userID).Update("fcm_token", token).Error
}

func (a *authRepo) AddToBlackList(blacklist *models.Blacklist) error {
	blacklist.Token = normalizeToken(blacklist.Token)
	return a.DB.Create(blacklist).Error
}

func normalizeToken(token string) string {
	return strings.TrimSpace(token)
}

func (a *authRepo) IsTokenInBlacklist(token string) bool {
	var count int64
	a.DB.Model(&models.Blacklist{}).Where("token = ?", normalizeToken(token)).Count(&count)
	return count > 0
}

// FindRoleByID retrieves a role by its ID from the database.
func (a *authRepo) FindRoleByID(roleID uuid.UUID) (*models.Role, error) {
	var role models.Role
	if err := a.DB.Where("id = ?", roleID).First(&role).Error; err != nil {
		return nil, err
	}
	return &role, nil
}

// FindRoleByName fetches a role by its name from the database.
func (a *authRepo) FindRoleByName(name string) (*models.Role, error) {
	var role models.Role
	if err := a.DB.Where("name = ?", name).First(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Warn("Role not found", "name", name)
			return nil, errors.New("role not found")
		}
		return nil, err
	}
	return &role, nil
}
