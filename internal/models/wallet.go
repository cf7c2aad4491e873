package models

import (
	"time"
)

// DefaultOpeningBalance is credited to every wallet at creation.
const DefaultOpeningBalance = 50.0

// DefaultCurrency is the single currency the ledger operates in.
const DefaultCurrency = "BDT"

// Wallet holds the balance for exactly one user. Balances are mutated only
// by the transaction engine; block/unblock models the lifecycle instead of
// deletion.
type Wallet struct {
	ID          uint    `gorm:"primarykey" json:"id"`
	UserID      uint    `gorm:"uniqueIndex;not null" json:"userId"`
	Balance     float64 `gorm:"default:50" json:"balance"`
	Currency    string  `gorm:"default:'BDT'" json:"currency"`
	IsBlocked   bool    `gorm:"default:false" json:"isBlocked"`
	Commission  float64 `gorm:"default:0" json:"commission,omitempty"`
	AdminProfit float64 `gorm:"default:0" json:"adminProfit,omitempty"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
