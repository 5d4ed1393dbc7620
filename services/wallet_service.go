package services

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/techagentng/earnly/config"
	"github.com/techagentng/earnly/db"
	apiError "github.com/techagentng/earnly/errors"
	"github.com/techagentng/earnly/logger"
	"github.com/techagentng/earnly/models"
	"github.com/xuri/excelize/v2"
)

type WalletService interface {
	GetBalance(userID uint) (*models.WalletBalance, error)
	ListTransactions(userID uint, filter models.TransactionFilter) (*models.PagedResult, error)
	AdjustCoins(adminID, userID uint, req *models.AdjustCoinsRequest) (*models.User, error)

	GetWithdrawalSettings() (*models.WithdrawalSettings, error)
	UpdateWithdrawalSettings(adminID uint, req *models.WithdrawalSettingsRequest) (*models.WithdrawalSettings, error)

	RequestWithdrawal(user *models.User, req *models.WithdrawalRequest) (*models.Withdrawal, error)
	ListMyWithdrawals(userID uint, filter models.WithdrawalFilter) (*models.PagedResult, error)
	ListWithdrawals(filter models.WithdrawalFilter) (*models.PagedResult, error)
	ProcessWithdrawal(ctx context.Context, adminID, withdrawalID uint, approve bool, reason string, screenshot *multipart.FileHeader) (*models.Withdrawal, error)
	ExportWithdrawals(status string) (*bytes.Buffer, error)
}

type walletService struct {
	Config         *config.Config
	walletRepo     db.WalletRepository
	withdrawalRepo db.WithdrawalRepository
	settingsRepo   db.SettingsRepository
	authRepo       db.AuthRepository
	media          MediaService
	notifier       NotificationService
}

func NewWalletService(walletRepo db.WalletRepository, withdrawalRepo db.WithdrawalRepository, settingsRepo db.SettingsRepository,
	authRepo db.AuthRepository, media MediaService, notifier NotificationService, conf *config.Config) WalletService {
	return &walletService{
		Config:         conf,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		settingsRepo:   settingsRepo,
		authRepo:       authRepo,
		media:          media,
		notifier:       notifier,
	}
}

func (w *walletService) GetBalance(userID uint) (*models.WalletBalance, error) {
	user, err := w.authRepo.FindUserByID(userID)
	if err != nil {
		return nil, err
	}
	return &models.WalletBalance{
		Coins:          user.Coins,
		Value:          models.CoinsToRupees(user.Coins, w.Config.CoinsPerRupee),
		TotalEarned:    user.TotalEarned,
		TotalWithdrawn: user.TotalWithdrawn,
		CreatorCoins:   user.CreatorCoins,
		CoinsPerRupee:  w.Config.CoinsPerRupee,
	}, nil
}

func (w *walletService) ListTransactions(userID uint, filter models.TransactionFilter) (*models.PagedResult, error) {
	txs, total, err := w.walletRepo.ListTransactions(userID, filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(txs, total, filter.Pagination), nil
}

// AdjustCoins applies an admin bonus (positive) or correction (negative) to a user's coins.
func (w *walletService) AdjustCoins(adminID, userID uint, req *models.AdjustCoinsRequest) (*models.User, error) {
	if req.Coins == 0 {
		return nil, apiError.New("coins must not be zero", http.StatusBadRequest)
	}
	user, err := w.walletRepo.AdjustCoins(userID, models.Transaction{
		Type:        models.TxBonus,
		Coins:       req.Coins,
		Description: req.Description,
		Reference:   fmt.Sprintf("admin:%d", adminID),
	})
	if err != nil {
		return nil, err
	}
	logger.Info("coins adjusted", "admin_id", adminID, "user_id", userID, "coins", req.Coins)

	title := "Coins added"
	if req.Coins < 0 {
		title = "Coins deducted"
	}
	w.notifier.Notify(user, models.NotifyWallet, title, fmt.Sprintf("%d coins: %s", req.Coins, req.Description))
	return user, nil
}

func (w *walletService) defaultSettings() models.WithdrawalSettings {
	amounts, err := models.NormalizeAmounts(w.Config.WithdrawalAmounts)
	if err != nil {
		amounts = models.Amounts{}
	}
	return models.WithdrawalSettings{
		MinimumWithdrawalAmount: w.Config.MinimumWithdrawal,
		WithdrawalAmounts:       amounts,
	}
}

func (w *walletService) GetWithdrawalSettings() (*models.WithdrawalSettings, error) {
	return w.settingsRepo.GetWithdrawalSettings(w.defaultSettings())
}

func (w *walletService) UpdateWithdrawalSettings(adminID uint, req *models.WithdrawalSettingsRequest) (*models.WithdrawalSettings, error) {
	if req.MinimumWithdrawalAmount <= 0 {
		return nil, apiError.New("minimum withdrawal amount must be positive", http.StatusBadRequest)
	}
	amounts, err := models.NormalizeAmounts(req.WithdrawalAmounts)
	if err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	if len(amounts) > 0 && amounts[len(amounts)-1] < req.MinimumWithdrawalAmount {
		return nil, apiError.New("at least one withdrawal amount must reach the minimum", http.StatusBadRequest)
	}

	settings := &models.WithdrawalSettings{
		MinimumWithdrawalAmount: req.MinimumWithdrawalAmount,
		WithdrawalAmounts:       amounts,
		UpdatedBy:               &adminID,
		UpdatedAt:               time.Now(),
	}
	if err := w.settingsRepo.UpdateWithdrawalSettings(settings); err != nil {
		return nil, err
	}
	logger.Info("withdrawal settings updated", "admin_id", adminID, "minimum", settings.MinimumWithdrawalAmount, "amounts", settings.WithdrawalAmounts)
	return w.settingsRepo.GetWithdrawalSettings(w.defaultSettings())
}

// RequestWithdrawal validates the amount and payout details, then holds the coins.
func (w *walletService) RequestWithdrawal(user *models.User, req *models.WithdrawalRequest) (*models.Withdrawal, error) {
	if err := req.ValidatePaymentDetails(); err != nil {
		return nil, apiError.New(err.Error(), http.StatusBadRequest)
	}
	settings, err := w.GetWithdrawalSettings()
	if err != nil {
		return nil, err
	}
	if err := settings.Allows(req.Amount); err != nil {
		return nil, apiError.New(err.Error(), apiError.ErrInvalidWithdrawalAmount.Status)
	}

	coins, err := models.RupeesToCoins(req.Amount, w.Config.CoinsPerRupee)
	if err != nil {
		return nil, apiError.New(err.Error(), apiError.ErrInvalidWithdrawalAmount.Status)
	}
	if user.Coins < coins {
		return nil, apiError.ErrInsufficientCoins
	}

	withdrawal, err := w.withdrawalRepo.CreateWithdrawal(&models.Withdrawal{
		UserID:        user.ID,
		Coins:         coins,
		Amount:        models.CoinsToRupees(coins, w.Config.CoinsPerRupee),
		PaymentMethod: req.PaymentMethod,
		UpiID:         req.UpiID,
		AccountNumber: req.AccountNumber,
		IFSC:          req.IFSC,
		AccountHolder: req.AccountHolder,
		Phone:         req.Phone,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal requested", "user_id", user.ID, "withdrawal_id", withdrawal.ID, "coins", coins, "method", req.PaymentMethod)
	return withdrawal, nil
}

func (w *walletService) ListMyWithdrawals(userID uint, filter models.WithdrawalFilter) (*models.PagedResult, error) {
	filter.UserID = userID
	return w.ListWithdrawals(filter)
}

func (w *walletService) ListWithdrawals(filter models.WithdrawalFilter) (*models.PagedResult, error) {
	list, total, err := w.withdrawalRepo.ListWithdrawals(filter)
	if err != nil {
		return nil, err
	}
	return models.NewPagedResult(list, total, filter.Pagination), nil
}

// ProcessWithdrawal approves (optionally with a payment screenshot) or rejects a pending
// withdrawal. Rejection returns the held coins.
func (w *walletService) ProcessWithdrawal(ctx context.Context, adminID, withdrawalID uint, approve bool, reason string, screenshot *multipart.FileHeader) (*models.Withdrawal, error) {
	if !approve && reason == "" {
		return nil, apiError.New("a rejection reason is required", http.StatusBadRequest)
	}

	var screenshotURL string
	if approve && screenshot != nil {
		current, err := w.withdrawalRepo.FindWithdrawalByID(withdrawalID)
		if err != nil {
			return nil, err
		}
		if current.Status != models.StatusPending {
			return nil, apiError.ErrInvalidTransition
		}
		upload, err := w.media.UploadFile(ctx, screenshot, FolderWithdrawals)
		if err != nil {
			return nil, err
		}
		screenshotURL = upload.URL
	}

	withdrawal, err := w.withdrawalRepo.ProcessWithdrawal(withdrawalID, adminID, approve, reason, screenshotURL)
	if err != nil {
		return nil, err
	}
	logger.Info("withdrawal processed", "withdrawal_id", withdrawal.ID, "admin_id", adminID, "status", withdrawal.Status)

	if user, err := w.authRepo.FindUserByID(withdrawal.UserID); err == nil {
		w.notifier.NotifyWithdrawal(user, withdrawal)
	} else {
		logger.Warn("withdrawal owner not found", "user_id", withdrawal.UserID, "error", err)
	}
	return withdrawal, nil
}

var withdrawalExportHeader = []interface{}{
	"ID", "Requested At", "User", "Email", "Coins", "Amount (INR)", "Method",
	"UPI ID", "Account Number", "IFSC", "Account Holder", "Phone", "Status", "Processed At",
}

// ExportWithdrawals renders the withdrawals with the given status (all when empty) as XLSX.
func (w *walletService) ExportWithdrawals(status string) (*bytes.Buffer, error) {
	list, err := w.withdrawalRepo.ListAllWithdrawals(status)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			logger.Warn("close workbook", "error", err)
		}
	}()

	const sheet = "Withdrawals"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(sheet, "A1", &withdrawalExportHeader); err != nil {
		return nil, err
	}

	for i, wd := range list {
		var name, email, processed string
		if wd.User != nil {
			name, email = wd.User.Fullname, wd.User.Email
		}
		if wd.ProcessedAt != nil {
			processed = wd.ProcessedAt.Format(time.RFC3339)
		}
		row := []interface{}{
			wd.ID, wd.CreatedAt.Format(time.RFC3339), name, email, wd.Coins, wd.Amount.InexactFloat64(), wd.PaymentMethod,
			wd.UpiID, wd.AccountNumber, wd.IFSC, wd.AccountHolder, wd.Phone, wd.Status, processed,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, err
		}
	}

	return f.WriteToBuffer()
}
