package wallet

import (
	"context"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
)

// UserSummary is the owner block embedded in wallet responses.
type UserSummary struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role"`
	NID   int64  `json:"nid,omitempty"`
}

// WalletResponse shapes a wallet for the API. Commission shows only for
// agent wallets and adminProfit only for the admin wallet.
type WalletResponse struct {
	ID          uint        `json:"id"`
	Balance     float64     `json:"balance"`
	Currency    string      `json:"currency"`
	IsBlocked   bool        `json:"isBlocked"`
	User        UserSummary `json:"user"`
	Commission  *float64    `json:"commission,omitempty"`
	AdminProfit *float64    `json:"adminProfit,omitempty"`
}

type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalWallets int64 `json:"totalWallets"`
	HasNextPage  bool  `json:"hasNextPage"`
	HasPrevPage  bool  `json:"hasPrevPage"`
}

type WalletPage struct {
	Wallets    []WalletResponse `json:"wallets"`
	Pagination Pagination       `json:"pagination"`
}

// CacheOperator is the wallet-cache surface this service needs.
type CacheOperator interface {
	GetWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	CacheWallet(ctx context.Context, wallet *models.Wallet) error
	InvalidateWallet(ctx context.Context, userID uint) error
}

// NoopCache satisfies CacheOperator without a cache behind it.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint) (*models.Wallet, error) {
	return nil, ErrCacheDisabled
}
func (NoopCache) CacheWallet(context.Context, *models.Wallet) error { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint) error      { return nil }
