package repositories

import (
	"context"
	"time"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
)

// UserRepository reads and writes user records. The transaction engine only
// ever reads through it; role and status changes come from the user service.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetAdmin(ctx context.Context) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
}

// WalletRepository provides balance storage. GetByUserIDForUpdate takes a
// row-level lock and must be called inside Store.WithinTransaction.
type WalletRepository interface {
	Create(ctx context.Context, wallet *models.Wallet) error
	GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error)
	GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error)
	Update(ctx context.Context, wallet *models.Wallet) error
	SetBlocked(ctx context.Context, userID uint, blocked bool) (*models.Wallet, error)
	List(ctx context.Context, f ListWalletsFilter) ([]WalletWithUser, int64, error)
	Stats(ctx context.Context) (WalletStats, error)
}

// TransactionRepository is the append-only ledger plus its read queries.
type TransactionRepository interface {
	Create(ctx context.Context, tx *models.Transaction) error
	ListForUser(ctx context.Context, userID uint, f MyTransactionsFilter) ([]TransactionWithParties, int64, error)
	List(ctx context.Context, f ListTransactionsFilter) ([]TransactionWithParties, int64, error)
	GetForParticipant(ctx context.Context, id, userID uint) (*TransactionWithParties, error)
	Stats(ctx context.Context) (TransactionStats, error)
}

// Store bundles the repositories so a logical operation can run all of its
// reads, balance updates and ledger appends in one database transaction.
type Store interface {
	Users() UserRepository
	Wallets() WalletRepository
	Transactions() TransactionRepository
	WithinTransaction(ctx context.Context, fn func(Store) error) error
}

// MyTransactionsFilter narrows a participant's own transaction listing.
type MyTransactionsFilter struct {
	Type      string
	SortOrder string
	Page      int
	Limit     int
}

// ListTransactionsFilter is the admin-side ledger query.
type ListTransactionsFilter struct {
	Search       string
	Type         string
	Status       string
	SenderRole   string
	ReceiverRole string
	MinAmount    *float64
	MaxAmount    *float64
	StartDate    *time.Time
	EndDate      *time.Time
	SortBy       string
	SortOrder    string
	Page         int
	Limit        int
}

// ListWalletsFilter is the admin-side wallet query.
type ListWalletsFilter struct {
	Search     string
	Role       string
	Blocked    *bool
	MinBalance *float64
	MaxBalance *float64
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

// TransactionWithParties joins a ledger entry with its participants.
type TransactionWithParties struct {
	Transaction models.Transaction
	Sender      *models.User
	Receiver    *models.User
}

// WalletWithUser joins a wallet with its owner.
type WalletWithUser struct {
	Wallet models.Wallet
	User   models.User
}

type TransactionStats struct {
	TotalTransactions int64   `json:"totalTransactions"`
	TotalVolume       float64 `json:"totalVolume"`
}

type WalletStats struct {
	TotalWallets     int64 `json:"totalWallets"`
	BlockedWallets   int64 `json:"blockedWallets"`
	UnblockedWallets int64 `json:"unblockedWallets"`
}
