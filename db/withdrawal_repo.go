package db

import (
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrWithdrawalNotFound = errs.New("withdrawal not found", http.StatusNotFound)

type WithdrawalRepository interface {
	CreateWithdrawal(w *models.Withdrawal) (*models.Withdrawal, error)
	ProcessWithdrawal(withdrawalID, adminID uint, approve bool, reason, screenshotURL string) (*models.Withdrawal, error)
	FindWithdrawalByID(withdrawalID uint) (*models.Withdrawal, error)
	ListWithdrawals(filter models.WithdrawalFilter) ([]models.Withdrawal, int64, error)
	ListAllWithdrawals(status string) ([]models.Withdrawal, error)
	SumPaidOut() (decimal.Decimal, error)
}

type withdrawalRepo struct {
	DB *gorm.DB
}

func NewWithdrawalRepo(db *GormDB) WithdrawalRepository {
	return &withdrawalRepo{db.DB}
}

// CreateWithdrawal stores the request and holds its coins in one transaction.
func (r *withdrawalRepo) CreateWithdrawal(w *models.Withdrawal) (*models.Withdrawal, error) {
	if w.Coins <= 0 || w.Coins > models.MaxCoins {
		return nil, ErrInvalidLedgerEntry
	}
	w.Status = models.StatusPending
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(w).Error; err != nil {
			return errors.Wrap(err, "create withdrawal")
		}
		_, err := applyCoins(tx, w.UserID, models.Transaction{
			Type:        models.TxWithdrawn,
			Coins:       -w.Coins,
			Description: fmt.Sprintf("Withdrawal of ₹%s via %s", w.Amount.StringFixed(2), w.PaymentMethod),
			Reference:   reference("withdrawal", w.ID),
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ProcessWithdrawal settles a pending withdrawal; rejection returns the held coins.
func (r *withdrawalRepo) ProcessWithdrawal(withdrawalID, adminID uint, approve bool, reason, screenshotURL string) (*models.Withdrawal, error) {
	var w models.Withdrawal
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&w, withdrawalID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrWithdrawalNotFound
			}
			return errors.Wrap(err, "lock withdrawal")
		}
		if w.Status != models.StatusPending {
			return errs.ErrInvalidTransition
		}

		now := time.Now()
		w.ProcessedBy = &adminID
		w.ProcessedAt = &now
		if approve {
			w.Status = models.StatusApproved
			w.PaymentScreenshotURL = screenshotURL
		} else {
			w.Status = models.StatusRejected
			w.RejectionReason = reason
			if _, err := applyCoins(tx, w.UserID, models.Transaction{
				Type:        models.TxRefund,
				Coins:       w.Coins,
				Description: "Refund for rejected withdrawal",
				Reference:   reference("withdrawal", w.ID),
			}); err != nil {
				return err
			}
		}

		return tx.Model(&w).Updates(map[string]interface{}{
			"status":                 w.Status,
			"rejection_reason":       w.RejectionReason,
			"payment_screenshot_url": w.PaymentScreenshotURL,
			"processed_by":           w.ProcessedBy,
			"processed_at":           w.ProcessedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepo) FindWithdrawalByID(withdrawalID uint) (*models.Withdrawal, error) {
	var w models.Withdrawal
	if err := r.DB.Preload("User").First(&w, withdrawalID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWithdrawalNotFound
		}
		return nil, err
	}
	return &w, nil
}

func (r *withdrawalRepo) ListWithdrawals(filter models.WithdrawalFilter) ([]models.Withdrawal, int64, error) {
	var (
		list  []models.Withdrawal
		total int64
	)
	q := r.DB.Model(&models.Withdrawal{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count withdrawals")
	}
	p := filter.Pagination.Normalize()
	if err := q.Preload("User").Order("created_at DESC").Offset(p.Offset()).Limit(p.Limit).Find(&list).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list withdrawals")
	}
	return list, total, nil
}

func (r *withdrawalRepo) ListAllWithdrawals(status string) ([]models.Withdrawal, error) {
	var list []models.Withdrawal
	q := r.DB.Preload("User").Order("created_at ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&list).Error; err != nil {
		return nil, errors.Wrap(err, "list withdrawals")
	}
	return list, nil
}

func (r *withdrawalRepo) SumPaidOut() (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := r.DB.Model(&models.Withdrawal{}).
		Where("status = ?", models.StatusApproved).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
