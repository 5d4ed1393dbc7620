package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentUPI     = "upi"
	PaymentBank    = "bank"
	PaymentPaytm   = "paytm"
	PaymentPhonePe = "phonepe"
)

// Withdrawal converts held coins to a manual payout.
type Withdrawal struct {
	Model
	UserID               uint            `json:"user_id" gorm:"index;not null"`
	User                 *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Coins                int64           `json:"coins" gorm:"not null"`
	Amount               decimal.Decimal `json:"amount" gorm:"type:numeric(12,2);not null"`
	PaymentMethod        string          `json:"payment_method" gorm:"not null"`
	UpiID                string          `json:"upi_id,omitempty"`
	AccountNumber        string          `json:"account_number,omitempty"`
	IFSC                 string          `json:"ifsc,omitempty"`
	AccountHolder        string          `json:"account_holder,omitempty"`
	Phone                string          `json:"phone,omitempty"`
	Status               string          `json:"status" gorm:"index;not null;default:pending"`
	RejectionReason      string          `json:"rejection_reason,omitempty"`
	PaymentScreenshotURL string          `json:"payment_screenshot_url,omitempty"`
	ProcessedBy          *uint           `json:"processed_by,omitempty"`
	ProcessedAt          *time.Time      `json:"processed_at,omitempty"`
}

type WithdrawalRequest struct {
	Amount        int64  `json:"amount" binding:"required,gt=0,max=100000000"`
	PaymentMethod string `json:"payment_method" binding:"required,oneof=upi bank paytm phonepe" conform:"lower"`
	UpiID         string `json:"upi_id" conform:"trim"`
	AccountNumber string `json:"account_number" conform:"num"`
	IFSC          string `json:"ifsc" conform:"trim,upper"`
	AccountHolder string `json:"account_holder" conform:"trim"`
	Phone         string `json:"phone" conform:"num"`
}

var (
	ErrMissingUpiID       = errors.New("upi_id is required for UPI withdrawals")
	ErrMissingBankDetails = errors.New("account_number, ifsc and account_holder are required for bank withdrawals")
	ErrMissingPhone       = errors.New("phone is required for wallet withdrawals")
	ErrUnknownMethod      = errors.New("unsupported payment method")
)

// ValidatePaymentDetails checks the fields each payout method needs.
func (r *WithdrawalRequest) ValidatePaymentDetails() error {
	switch r.PaymentMethod {
	case PaymentUPI:
		if r.UpiID == "" || !strings.Contains(r.UpiID, "@") {
			return ErrMissingUpiID
		}
	case PaymentBank:
		if r.AccountNumber == "" || r.IFSC == "" || r.AccountHolder == "" {
			return ErrMissingBankDetails
		}
	case PaymentPaytm, PaymentPhonePe:
		if len(r.Phone) < 10 {
			return ErrMissingPhone
		}
	default:
		return ErrUnknownMethod
	}
	return nil
}

type WithdrawalFilter struct {
	Pagination
	Status string `form:"status"`
	UserID uint   `form:"user_id"`
}
