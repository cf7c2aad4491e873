package transaction

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
)

// memStore is an in-memory repositories.Store. WithinTransaction serializes
// callers like the database would and snapshots all state up front,
// restoring it when the callback fails, so tests can observe the engine's
// all-or-nothing behaviour without a database. Locking reads append to
// lockLog so acquisition order is observable too.
type memStore struct {
	mu       sync.Mutex
	users    map[uint]*models.User
	wallets  map[uint]*models.Wallet
	entries  []*models.Transaction
	lockLog  []uint
	nextID   uint
	createTx error
}

func newMemStore() *memStore {
	return &memStore{
		users:   make(map[uint]*models.User),
		wallets: make(map[uint]*models.Wallet),
	}
}

func (m *memStore) seedUser(id uint, role string, balance float64) {
	m.users[id] = &models.User{
		ID:              id,
		Name:            fmt.Sprintf("user-%d", id),
		Email:           fmt.Sprintf("user-%d@example.com", id),
		Phone:           fmt.Sprintf("0170000%04d", id),
		Role:            role,
		IsActive:        models.StatusActive,
		IsAgentApproved: role == models.RoleAgent,
	}
	m.wallets[id] = &models.Wallet{
		ID:       id,
		UserID:   id,
		Balance:  balance,
		Currency: models.DefaultCurrency,
	}
}

func (m *memStore) balance(userID uint) float64 {
	return m.wallets[userID].Balance
}

func (m *memStore) Users() repositories.UserRepository               { return (*memUsers)(m) }
func (m *memStore) Wallets() repositories.WalletRepository           { return (*memWallets)(m) }
func (m *memStore) Transactions() repositories.TransactionRepository { return (*memTransactions)(m) }

func (m *memStore) WithinTransaction(ctx context.Context, fn func(repositories.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make(map[uint]*models.User, len(m.users))
	for id, u := range m.users {
		cp := *u
		users[id] = &cp
	}
	wallets := make(map[uint]*models.Wallet, len(m.wallets))
	for id, w := range m.wallets {
		cp := *w
		wallets[id] = &cp
	}
	entries := make([]*models.Transaction, len(m.entries))
	copy(entries, m.entries)
	nextID := m.nextID

	if err := fn(m); err != nil {
		m.users = users
		m.wallets = wallets
		m.entries = entries
		m.nextID = nextID
		return err
	}
	return nil
}

type memUsers memStore

func (m *memUsers) Create(_ context.Context, user *models.User) error {
	m.nextID++
	user.ID = m.nextID
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(_ context.Context, id uint) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUsers) GetAdmin(_ context.Context) (*models.User, error) {
	ids := make([]uint, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if m.users[id].Role == models.RoleAdmin {
			cp := *m.users[id]
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (m *memUsers) Update(_ context.Context, user *models.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return repositories.ErrUserNotFound
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

type memWallets memStore

func (m *memWallets) Create(_ context.Context, wallet *models.Wallet) error {
	m.nextID++
	wallet.ID = m.nextID
	cp := *wallet
	m.wallets[wallet.UserID] = &cp
	return nil
}

func (m *memWallets) GetByUserID(_ context.Context, userID uint) (*models.Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	cp := *w
	return &cp, nil
}

func (m *memWallets) GetByUserIDForUpdate(ctx context.Context, userID uint) (*models.Wallet, error) {
	m.lockLog = append(m.lockLog, userID)
	return m.GetByUserID(ctx, userID)
}

func (m *memWallets) Update(_ context.Context, wallet *models.Wallet) error {
	if _, ok := m.wallets[wallet.UserID]; !ok {
		return repositories.ErrWalletNotFound
	}
	cp := *wallet
	m.wallets[wallet.UserID] = &cp
	return nil
}

func (m *memWallets) SetBlocked(_ context.Context, userID uint, blocked bool) (*models.Wallet, error) {
	w, ok := m.wallets[userID]
	if !ok {
		return nil, repositories.ErrWalletNotFound
	}
	w.IsBlocked = blocked
	cp := *w
	return &cp, nil
}

func (m *memWallets) List(_ context.Context, f repositories.ListWalletsFilter) ([]repositories.WalletWithUser, int64, error) {
	ids := make([]uint, 0, len(m.wallets))
	for id := range m.wallets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]repositories.WalletWithUser, 0, len(ids))
	for _, id := range ids {
		w := m.wallets[id]
		u := m.users[id]
		if f.Blocked != nil && w.IsBlocked != *f.Blocked {
			continue
		}
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		rows = append(rows, repositories.WalletWithUser{Wallet: *w, User: *u})
	}
	return rows, int64(len(rows)), nil
}

func (m *memWallets) Stats(_ context.Context) (repositories.WalletStats, error) {
	var stats repositories.WalletStats
	for _, w := range m.wallets {
		stats.TotalWallets++
		if w.IsBlocked {
			stats.BlockedWallets++
		} else {
			stats.UnblockedWallets++
		}
	}
	return stats, nil
}

type memTransactions memStore

func (m *memTransactions) Create(_ context.Context, tx *models.Transaction) error {
	if m.createTx != nil {
		return m.createTx
	}
	m.nextID++
	tx.ID = m.nextID
	cp := *tx
	m.entries = append(m.entries, &cp)
	return nil
}

func (m *memTransactions) ListForUser(_ context.Context, userID uint, f repositories.MyTransactionsFilter) ([]repositories.TransactionWithParties, int64, error) {
	rows := make([]repositories.TransactionWithParties, 0)
	for _, e := range m.entries {
		mine := (e.SenderID != nil && *e.SenderID == userID) ||
			(e.ReceiverID != nil && *e.ReceiverID == userID)
		if !mine {
			continue
		}
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		rows = append(rows, m.withParties(e))
	}
	if f.SortOrder != "asc" {
		for i, j := 0, len(rows)-1; i < j; i, j = i+1, j-1 {
			rows[i], rows[j] = rows[j], rows[i]
		}
	}
	total := int64(len(rows))
	rows = paginate(rows, f.Page, f.Limit)
	return rows, total, nil
}

func (m *memTransactions) List(_ context.Context, f repositories.ListTransactionsFilter) ([]repositories.TransactionWithParties, int64, error) {
	rows := make([]repositories.TransactionWithParties, 0, len(m.entries))
	for _, e := range m.entries {
		if f.Type != "" && e.Type != f.Type {
			continue
		}
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		rows = append(rows, m.withParties(e))
	}
	total := int64(len(rows))
	rows = paginate(rows, f.Page, f.Limit)
	return rows, total, nil
}

func (m *memTransactions) GetForParticipant(_ context.Context, id, userID uint) (*repositories.TransactionWithParties, error) {
	for _, e := range m.entries {
		if e.ID != id {
			continue
		}
		mine := (e.SenderID != nil && *e.SenderID == userID) ||
			(e.ReceiverID != nil && *e.ReceiverID == userID)
		if !mine {
			break
		}
		row := m.withParties(e)
		return &row, nil
	}
	return nil, repositories.ErrTransactionNotFound
}

func (m *memTransactions) Stats(_ context.Context) (repositories.TransactionStats, error) {
	var stats repositories.TransactionStats
	for _, e := range m.entries {
		stats.TotalTransactions++
		stats.TotalVolume += e.Amount
	}
	return stats, nil
}

func (m *memTransactions) withParties(e *models.Transaction) repositories.TransactionWithParties {
	row := repositories.TransactionWithParties{Transaction: *e}
	if e.SenderID != nil {
		if u, ok := m.users[*e.SenderID]; ok {
			cp := *u
			row.Sender = &cp
		}
	}
	if e.ReceiverID != nil {
		if u, ok := m.users[*e.ReceiverID]; ok {
			cp := *u
			row.Receiver = &cp
		}
	}
	return row
}

func paginate(rows []repositories.TransactionWithParties, page, limit int) []repositories.TransactionWithParties {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	start := (page - 1) * limit
	if start >= len(rows) {
		return nil
	}
	end := start + limit
	if end > len(rows) {
		end = len(rows)
	}
	return rows[start:end]
}

// recordingInvalidator captures which wallets the engine invalidates after a
// commit.
type recordingInvalidator struct {
	invalidated []uint
}

func (r *recordingInvalidator) InvalidateWallet(_ context.Context, userID uint) error {
	r.invalidated = append(r.invalidated, userID)
	return nil
}
