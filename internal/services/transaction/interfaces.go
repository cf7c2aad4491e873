package transaction

import (
	"context"

	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
)

// Service is the transaction engine plus its read queries. Every engine
// operation validates, then applies all balance mutations and ledger
// appends as a single atomic unit: either every effect commits or none.
type Service interface {
	AddMoney(ctx context.Context, in AddMoneyInput) (*AddMoneyResult, error)
	SendMoney(ctx context.Context, in SendMoneyInput) (*SendMoneyResult, error)
	CashIn(ctx context.Context, in CashInInput) (*CashInResult, error)
	CashOut(ctx context.Context, in CashOutInput) (*CashOutResult, error)
	AdminWithdraw(ctx context.Context, in AdminWithdrawInput) (*AdminWithdrawResult, error)

	GetMyTransactions(ctx context.Context, userID uint, f repositories.MyTransactionsFilter) (*TransactionPage, error)
	GetAllTransactions(ctx context.Context, f repositories.ListTransactionsFilter) (*TransactionPage, error)
	GetMyTransactionByID(ctx context.Context, userID, id uint) (*TransactionResponse, error)
	GetAnalytics(ctx context.Context) (*repositories.TransactionStats, error)
}

// CacheInvalidator drops stale wallet cache entries after a commit.
type CacheInvalidator interface {
	InvalidateWallet(ctx context.Context, userID uint) error
}

// NoopInvalidator satisfies CacheInvalidator without a cache behind it.
type NoopInvalidator struct{}

func (NoopInvalidator) InvalidateWallet(context.Context, uint) error { return nil }

// MetricsCollector records engine activity.
type MetricsCollector interface {
	RecordTransaction(txType string, amount float64)
	RecordError(operation, errType string)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTransaction(string, float64) {}
func (NoopMetricsCollector) RecordError(string, string)        {}
