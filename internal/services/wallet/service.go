// Package wallet provides the read and administrative side of wallets:
// owner lookups, admin listings, block/unblock, and counts. Balance
// mutation belongs exclusively to the transaction engine.
package wallet

import (
	"context"
	"errors"

	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
)

// ErrCacheDisabled is returned by NoopCache reads.
var ErrCacheDisabled = errors.New("cache disabled")

type Service interface {
	GetMyWallet(ctx context.Context, userID uint) (*WalletResponse, error)
	GetAllWallets(ctx context.Context, f repositories.ListWalletsFilter) (*WalletPage, error)
	BlockWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	UnblockWallet(ctx context.Context, userID uint) (*models.Wallet, error)
	GetAnalytics(ctx context.Context) (*repositories.WalletStats, error)
}

type service struct {
	store repositories.Store
	cache CacheOperator
}

func NewService(store repositories.Store, cache CacheOperator) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	return &service{store: store, cache: cache}
}

func toResponse(w *models.Wallet, u *models.User) *WalletResponse {
	resp := &WalletResponse{
		ID:        w.ID,
		Balance:   w.Balance,
		Currency:  w.Currency,
		IsBlocked: w.IsBlocked,
		User: UserSummary{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Phone: u.Phone,
			Role:  u.Role,
			NID:   u.NID,
		},
	}
	if u.Role == models.RoleAgent {
		commission := w.Commission
		resp.Commission = &commission
	}
	if u.Role == models.RoleAdmin {
		adminProfit := w.AdminProfit
		resp.AdminProfit = &adminProfit
	}
	return resp
}

func (s *service) GetMyWallet(ctx context.Context, userID uint) (*WalletResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperr.NotFound("User or Wallet not found")
		}
		return nil, err
	}

	// Cache first; the engine invalidates the entry on every mutation.
	if cached, err := s.cache.GetWallet(ctx, userID); err == nil && cached != nil {
		return toResponse(cached, user), nil
	}

	wallet, err := s.store.Wallets().GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperr.NotFound("User or Wallet not found")
		}
		return nil, err
	}

	_ = s.cache.CacheWallet(ctx, wallet)
	return toResponse(wallet, user), nil
}

func (s *service) GetAllWallets(ctx context.Context, f repositories.ListWalletsFilter) (*WalletPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 10
	}

	rows, total, err := s.store.Wallets().List(ctx, f)
	if err != nil {
		return nil, err
	}

	wallets := make([]WalletResponse, 0, len(rows))
	for i := range rows {
		wallets = append(wallets, *toResponse(&rows[i].Wallet, &rows[i].User))
	}

	totalPages := int((total + int64(f.Limit) - 1) / int64(f.Limit))
	return &WalletPage{
		Wallets: wallets,
		Pagination: Pagination{
			CurrentPage:  f.Page,
			TotalPages:   totalPages,
			TotalWallets: total,
			HasNextPage:  f.Page < totalPages,
			HasPrevPage:  f.Page > 1,
		},
	}, nil
}

func (s *service) BlockWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.setBlocked(ctx, userID, true)
}

func (s *service) UnblockWallet(ctx context.Context, userID uint) (*models.Wallet, error) {
	return s.setBlocked(ctx, userID, false)
}

func (s *service) setBlocked(ctx context.Context, userID uint, blocked bool) (*models.Wallet, error) {
	wallet, err := s.store.Wallets().SetBlocked(ctx, userID, blocked)
	if err != nil {
		if errors.Is(err, repositories.ErrWalletNotFound) {
			return nil, apperr.NotFound("Wallet not found")
		}
		return nil, err
	}
	_ = s.cache.InvalidateWallet(ctx, userID)
	return wallet, nil
}

func (s *service) GetAnalytics(ctx context.Context) (*repositories.WalletStats, error) {
	stats, err := s.store.Wallets().Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
