package models

import (
	"time"
)

// Transaction types. A single logical operation may append several entries,
// e.g. a cash-out can produce CASH_OUT, ADD_MONEY, ADMIN_PROFIT and
// COMMISSION rows in one commit.
const (
	TransactionTypeAddMoney      = "ADD_MONEY"
	TransactionTypeSendMoney     = "SEND_MONEY"
	TransactionTypeCashIn        = "CASH_IN"
	TransactionTypeCashOut       = "CASH_OUT"
	TransactionTypeAdminProfit   = "ADMIN_PROFIT"
	TransactionTypeCommission    = "COMMISSION"
	TransactionTypeAdminWithdraw = "ADMIN_WITHDRAW"
)

// Transaction statuses. The engine only ever writes APPROVED; PENDING is an
// extension point for flows that need a review step.
const (
	TransactionStatusPending  = "PENDING"
	TransactionStatusApproved = "APPROVED"
)

// Transaction is one immutable ledger entry. Rows are written exactly once
// inside the engine's atomic unit and never updated or deleted.
type Transaction struct {
	ID            uint    `gorm:"primarykey" json:"id"`
	SenderID      *uint   `gorm:"index" json:"sender"`
	ReceiverID    *uint   `gorm:"index" json:"receiver"`
	WalletID      uint    `gorm:"not null" json:"walletId"`
	TransactionID string  `gorm:"uniqueIndex;not null" json:"transactionId"`
	Type          string  `gorm:"not null" json:"transactionType"`
	Amount        float64 `gorm:"not null" json:"amount"`
	Fee           float64 `gorm:"default:0" json:"fee"`
	Status        string  `gorm:"default:'PENDING'" json:"status"`
	Description   string  `json:"description"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
