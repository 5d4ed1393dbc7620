package db

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrCoinRequestNotFound = errs.New("coin request not found", http.StatusNotFound)

type CreatorRepository interface {
	ApplyForCreator(userID uint) error
	ReviewCreatorApplication(userID uint, approve bool) (*models.User, error)
	ListCreatorApplications(filter models.UserFilter) ([]models.User, int64, error)
	CreateCoinRequest(req *models.CreatorCoinRequest) error
	ProcessCoinRequest(requestID, adminID uint, approve bool, reason string) (*models.CreatorCoinRequest, error)
	ListCoinRequests(filter models.CoinRequestFilter) ([]models.CreatorCoinRequest, int64, error)
}

type creatorRepo struct {
	DB *gorm.DB
}

func NewCreatorRepo(db *GormDB) CreatorRepository {
	return &creatorRepo{db.DB}
}

// ApplyForCreator moves a user with no (or a rejected) application to pending.
func (c *creatorRepo) ApplyForCreator(userID uint) error {
	result := c.DB.Model(&models.User{}).
		Where("id = ? AND creator_status IN ?", userID, []string{models.CreatorStatusNone, models.CreatorStatusRejected, ""}).
		Update("creator_status", models.CreatorStatusPending)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errs.ErrInvalidTransition
	}
	return nil
}

func (c *creatorRepo) ReviewCreatorApplication(userID uint, approve bool) (*models.User, error) {
	status := models.CreatorStatusRejected
	if approve {
		status = models.CreatorStatusApproved
	}
	result := c.DB.Model(&models.User{}).
		Where("id = ? AND creator_status = ?", userID, models.CreatorStatusPending).
		Update("creator_status", status)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, errs.ErrInvalidTransition
	}
	var user models.User
	if err := c.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *creatorRepo) ListCreatorApplications(filter models.UserFilter) ([]models.User, int64, error) {
	var (
		users []models.User
		total int64
	)
	status := filter.CreatorStatus
	if status == "" {
		status = models.CreatorStatusPending
	}
	q := c.DB.Model(&models.User{}).Where("creator_status = ?", status)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count creator applications")
	}
	p := filter.Pagination.Normalize()
	if err := q.Order("updated_at ASC").Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list creator applications")
	}
	return users, total, nil
}

func (c *creatorRepo) CreateCoinRequest(req *models.CreatorCoinRequest) error {
	req.Status = models.StatusPending
	return c.DB.Create(req).Error
}

// ProcessCoinRequest settles a pending request; approval credits the creator wallet.
func (c *creatorRepo) ProcessCoinRequest(requestID, adminID uint, approve bool, reason string) (*models.CreatorCoinRequest, error) {
	var req models.CreatorCoinRequest
	err := c.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&req, requestID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCoinRequestNotFound
			}
			return errors.Wrap(err, "lock coin request")
		}
		if req.Status != models.StatusPending {
			return errs.ErrInvalidTransition
		}

		now := time.Now()
		req.ProcessedBy = &adminID
		req.ProcessedAt = &now
		if approve {
			req.Status = models.StatusApproved
			if _, err := applyCoins(tx, req.UserID, models.Transaction{
				Type:        models.TxCreatorCredit,
				Wallet:      models.WalletCreator,
				Coins:       req.Coins,
				Description: fmt.Sprintf("Creator coins purchase (ref %s)", req.TransactionRef),
				Reference:   reference("coin_request", req.ID),
			}); err != nil {
				return err
			}
		} else {
			req.Status = models.StatusRejected
			req.RejectionReason = reason
		}

		return tx.Model(&req).Updates(map[string]interface{}{
			"status":           req.Status,
			"rejection_reason": req.RejectionReason,
			"processed_by":     req.ProcessedBy,
			"processed_at":     req.ProcessedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *creatorRepo) ListCoinRequests(filter models.CoinRequestFilter) ([]models.CreatorCoinRequest, int64, error) {
	var (
		list  []models.CreatorCoinRequest
		total int64
	)
	q := c.DB.Model(&models.CreatorCoinRequest{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count coin requests")
	}
	p := filter.Pagination.Normalize()
	if err := q.Preload("User").Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list coin requests")
	}
	return list, total, nil
}
