package repositories

import (
	"context"

	"gorm.io/gorm"
)

type gormStore struct {
	db *gorm.DB
}

// NewStore wraps a gorm handle in the Store aggregate. Inside
// WithinTransaction the returned Store is bound to the open transaction, so
// every repository call joins the same atomic unit.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository {
	return NewUserRepository(s.db)
}

func (s *gormStore) Wallets() WalletRepository {
	return NewWalletRepository(s.db)
}

func (s *gormStore) Transactions() TransactionRepository {
	return NewTransactionRepository(s.db)
}

func (s *gormStore) WithinTransaction(ctx context.Context, fn func(Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
