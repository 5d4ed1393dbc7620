package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

// WithdrawalSettingsID is the primary key of the only settings row.
const WithdrawalSettingsID = 1

// Amounts is a list of rupee values stored as JSON.
type Amounts []int64

func (a Amounts) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *Amounts) Scan(value interface{}) error {
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case nil:
		*a = Amounts{}
		return nil
	default:
		return fmt.Errorf("unsupported type for Amounts: %T", value)
	}
	return json.Unmarshal(b, a)
}

// WithdrawalSettings is a singleton row keyed by WithdrawalSettingsID. Amounts are rupees.
type WithdrawalSettings struct {
	ID                      uint      `json:"-" gorm:"primaryKey;autoIncrement:false"`
	MinimumWithdrawalAmount int64     `json:"minimum_withdrawal_amount" gorm:"not null"`
	WithdrawalAmounts       Amounts   `json:"withdrawal_amounts" gorm:"type:jsonb"`
	UpdatedBy               *uint     `json:"updated_by,omitempty"`
	CreatedAt               time.Time `json:"created_at"`
	UpdatedAt               time.Time `json:"updated_at"`
}

type WithdrawalSettingsRequest struct {
	MinimumWithdrawalAmount int64   `json:"minimum_withdrawal_amount" binding:"required,gt=0,max=100000000"`
	WithdrawalAmounts       []int64 `json:"withdrawal_amounts"`
}

var (
	ErrBelowMinimum     = errors.New("amount is below the minimum withdrawal amount")
	ErrAmountNotOffered = errors.New("amount is not one of the allowed withdrawal amounts")
	ErrNonPositive      = errors.New("withdrawal amounts must be positive")
)

// Allows checks a requested rupee amount against the settings.
func (s *WithdrawalSettings) Allows(amount int64) error {
	if amount < s.MinimumWithdrawalAmount {
		return ErrBelowMinimum
	}
	if len(s.WithdrawalAmounts) == 0 {
		return nil
	}
	for _, a := range s.WithdrawalAmounts {
		if a == amount {
			return nil
		}
	}
	return ErrAmountNotOffered
}

// NormalizeAmounts deduplicates and sorts amounts, rejecting non-positive values.
func NormalizeAmounts(amounts []int64) (Amounts, error) {
	seen := make(map[int64]bool, len(amounts))
	out := make(Amounts, 0, len(amounts))
	for _, a := range amounts {
		if a <= 0 {
			return nil, ErrNonPositive
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}
