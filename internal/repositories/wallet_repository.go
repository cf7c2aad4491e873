package repositories

import (
	"context"
	"fmt"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type walletRepository struct {
	db *gorm.DB
}

func NewWalletRepository(db *gorm.DB) WalletRepository {
	return &walletRepository{db: db}
}

func (r *walletRepository) Create(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Create(wallet).Error; err != nil {
		return fmt.Errorf("failed to create wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) GetByUserID(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&wallet).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	return &wallet, nil
}

// GetByUserIDForUpdate reads the wallet under SELECT ... FOR UPDATE so a
// concurrent operation on the same wallet blocks until this transaction
// commits. Lost balance updates are prevented at the row level.
func (r *walletRepository) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		First(&wallet).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrWalletNotFound
		}
		return nil, fmt.Errorf("failed to lock wallet: %w", err)
	}
	return &wallet, nil
}

func (r *walletRepository) Update(ctx context.Context, wallet *models.Wallet) error {
	if err := r.db.WithContext(ctx).Save(wallet).Error; err != nil {
		return fmt.Errorf("failed to update wallet: %w", err)
	}
	return nil
}

func (r *walletRepository) SetBlocked(ctx context.Context, userID uint, blocked bool) (*models.Wallet, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("user_id = ?", userID).
		Update("is_blocked", blocked)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update wallet block state: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrWalletNotFound
	}
	return r.GetByUserID(ctx, userID)
}

var walletSortColumns = map[string]string{
	"balance":   "wallets.balance",
	"createdAt": "wallets.created_at",
	"name":      "users.name",
	"email":     "users.email",
	"role":      "users.role",
}

func (r *walletRepository) List(ctx context.Context, f ListWalletsFilter) ([]WalletWithUser, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Joins("JOIN users ON users.id = wallets.user_id")

	if f.Blocked != nil {
		q = q.Where("wallets.is_blocked = ?", *f.Blocked)
	}
	if f.MinBalance != nil {
		q = q.Where("wallets.balance >= ?", *f.MinBalance)
	}
	if f.MaxBalance != nil {
		q = q.Where("wallets.balance <= ?", *f.MaxBalance)
	}
	if f.Role != "" {
		q = q.Where("users.role = ?", f.Role)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where("users.name ILIKE ? OR users.email ILIKE ? OR users.phone ILIKE ?",
			pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count wallets: %w", err)
	}

	column, ok := walletSortColumns[f.SortBy]
	if !ok {
		column = "wallets.created_at"
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}

	var wallets []models.Wallet
	err := q.Select("wallets.*").
		Order(column + " " + direction).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&wallets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list wallets: %w", err)
	}

	users, err := r.usersByID(ctx, walletOwnerIDs(wallets))
	if err != nil {
		return nil, 0, err
	}

	rows := make([]WalletWithUser, 0, len(wallets))
	for _, w := range wallets {
		rows = append(rows, WalletWithUser{Wallet: w, User: users[w.UserID]})
	}
	return rows, total, nil
}

func (r *walletRepository) Stats(ctx context.Context) (WalletStats, error) {
	var stats WalletStats
	db := r.db.WithContext(ctx).Model(&models.Wallet{})

	if err := db.Count(&stats.TotalWallets).Error; err != nil {
		return stats, fmt.Errorf("failed to count wallets: %w", err)
	}
	err := r.db.WithContext(ctx).
		Model(&models.Wallet{}).
		Where("is_blocked = ?", true).
		Count(&stats.BlockedWallets).Error
	if err != nil {
		return stats, fmt.Errorf("failed to count blocked wallets: %w", err)
	}
	stats.UnblockedWallets = stats.TotalWallets - stats.BlockedWallets
	return stats, nil
}

func (r *walletRepository) usersByID(ctx context.Context, ids []uint) (map[uint]models.User, error) {
	byID := make(map[uint]models.User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var users []models.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to load wallet owners: %w", err)
	}
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}

func walletOwnerIDs(wallets []models.Wallet) []uint {
	ids := make([]uint, 0, len(wallets))
	for _, w := range wallets {
		ids = append(ids, w.UserID)
	}
	return ids
}
