package models

const (
	TxEarned        = "earned"
	TxWithdrawn     = "withdrawn"
	TxBonus         = "bonus"
	TxReferral      = "referral"
	TxRefund        = "refund"
	TxCreatorCredit = "creator_credit"
	TxCreatorDebit  = "creator_debit"
)

const (
	WalletCoins   = "coins"
	WalletCreator = "creator"
)

// Transaction is an append-only ledger row; Coins is signed.
type Transaction struct {
	Model
	UserID       uint   `json:"user_id" gorm:"index;not null"`
	Type         string `json:"type" gorm:"index;not null"`
	Wallet       string `json:"wallet" gorm:"not null;default:coins"`
	Coins        int64  `json:"coins"`
	BalanceAfter int64  `json:"balance_after"`
	Description  string `json:"description"`
	Reference    string `json:"reference" gorm:"index"`
}

type TransactionFilter struct {
	Pagination
	Wallet string `form:"wallet"`
	Type   string `form:"type"`
}

// CountsAsEarning reports whether a credit of this type adds to TotalEarned.
func CountsAsEarning(txType string) bool {
	switch txType {
	case TxEarned, TxBonus, TxReferral:
		return true
	}
	return false
}

// SignIsValid reports whether Coins moves in the direction its type implies.
// Bonuses are admin adjustments and may go either way, but never by zero.
func (t *Transaction) SignIsValid() bool {
	switch t.Type {
	case TxWithdrawn, TxCreatorDebit:
		return t.Coins < 0
	case TxBonus:
		return t.Coins != 0
	default:
		return t.Coins > 0
	}
}
