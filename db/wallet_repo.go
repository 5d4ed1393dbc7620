package db

import (
	"fmt"
	"net/http"

	"github.com/pkg/errors"
	errs "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrInvalidLedgerEntry = errs.New("invalid coin amount", http.StatusBadRequest)

type WalletRepository interface {
	AdjustCoins(userID uint, entry models.Transaction) (*models.User, error)
	ListTransactions(userID uint, filter models.TransactionFilter) ([]models.Transaction, int64, error)
}

type walletRepo struct {
	DB *gorm.DB
}

func NewWalletRepo(db *GormDB) WalletRepository {
	return &walletRepo{db.DB}
}

// AdjustCoins applies one signed ledger entry in its own transaction.
func (w *walletRepo) AdjustCoins(userID uint, entry models.Transaction) (*models.User, error) {
	var user *models.User
	err := w.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		user, err = applyCoins(tx, userID, entry)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (w *walletRepo) ListTransactions(userID uint, filter models.TransactionFilter) ([]models.Transaction, int64, error) {
	var (
		txs   []models.Transaction
		total int64
	)
	q := w.DB.Model(&models.Transaction{}).Where("user_id = ?", userID)
	if filter.Wallet != "" {
		q = q.Where("wallet = ?", filter.Wallet)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "count transactions")
	}
	p := filter.Pagination.Normalize()
	if err := q.Order("created_at DESC, id DESC").Offset(p.Offset()).Limit(p.Limit).Find(&txs).Error; err != nil {
		return nil, 0, errors.Wrap(err, "list transactions")
	}
	return txs, total, nil
}

// lockUser loads the user row with FOR UPDATE so concurrent balance changes serialize.
func lockUser(tx *gorm.DB, userID uint) (*models.User, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.New("user not found", http.StatusNotFound)
		}
		return nil, errors.Wrap(err, "lock user")
	}
	return &user, nil
}

// applyCoins moves entry.Coins on one of the user's wallets and appends the ledger row.
// It must run inside tx; a debit that would go below zero returns ErrInsufficientCoins.
func applyCoins(tx *gorm.DB, userID uint, entry models.Transaction) (*models.User, error) {
	if !entry.SignIsValid() {
		return nil, ErrInvalidLedgerEntry
	}
	user, err := lockUser(tx, userID)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	switch entry.Wallet {
	case models.WalletCreator:
		if user.CreatorCoins+entry.Coins < 0 {
			return nil, errs.ErrInsufficientCoins
		}
		user.CreatorCoins += entry.Coins
		updates["creator_coins"] = user.CreatorCoins
		entry.BalanceAfter = user.CreatorCoins
	default:
		entry.Wallet = models.WalletCoins
		if user.Coins+entry.Coins < 0 {
			return nil, errs.ErrInsufficientCoins
		}
		user.Coins += entry.Coins
		updates["coins"] = user.Coins
		entry.BalanceAfter = user.Coins

		switch {
		case entry.Coins > 0 && models.CountsAsEarning(entry.Type):
			user.TotalEarned += entry.Coins
			updates["total_earned"] = user.TotalEarned
		case entry.Type == models.TxWithdrawn:
			user.TotalWithdrawn -= entry.Coins
			updates["total_withdrawn"] = user.TotalWithdrawn
		case entry.Type == models.TxRefund:
			user.TotalWithdrawn -= entry.Coins
			if user.TotalWithdrawn < 0 {
				user.TotalWithdrawn = 0
			}
			updates["total_withdrawn"] = user.TotalWithdrawn
		}
	}

	if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		return nil, errors.Wrap(err, "update balance")
	}

	entry.ID = 0
	entry.UserID = userID
	if err := tx.Create(&entry).Error; err != nil {
		return nil, errors.Wrap(err, "create transaction")
	}
	return user, nil
}

func reference(kind string, id uint) string {
	return fmt.Sprintf("%s:%d", kind, id)
}
