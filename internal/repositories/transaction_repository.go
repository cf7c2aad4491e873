package repositories

import (
	"context"
	"fmt"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// Create appends one ledger entry. Entries are never updated or deleted;
// the unique index on transaction_id backstops id generation.
func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *transactionRepository) ListForUser(ctx context.Context, userID uint, f MyTransactionsFilter) ([]TransactionWithParties, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Where("sender_id = ? OR receiver_id = ?", userID, userID)

	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}

	var txs []models.Transaction
	err := q.Order("created_at " + direction).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return r.attachParties(ctx, txs, total)
}

var transactionSortColumns = map[string]string{
	"amount":          "transactions.amount",
	"createdAt":       "transactions.created_at",
	"transactionType": "transactions.type",
	"status":          "transactions.status",
	"senderName":      "senders.name",
	"receiverName":    "receivers.name",
}

func (r *transactionRepository) List(ctx context.Context, f ListTransactionsFilter) ([]TransactionWithParties, int64, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Joins("LEFT JOIN users AS senders ON senders.id = transactions.sender_id").
		Joins("LEFT JOIN users AS receivers ON receivers.id = transactions.receiver_id")

	if f.Type != "" {
		q = q.Where("transactions.type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("transactions.status = ?", f.Status)
	}
	if f.MinAmount != nil {
		q = q.Where("transactions.amount >= ?", *f.MinAmount)
	}
	if f.MaxAmount != nil {
		q = q.Where("transactions.amount <= ?", *f.MaxAmount)
	}
	if f.StartDate != nil {
		q = q.Where("transactions.created_at >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where("transactions.created_at <= ?", *f.EndDate)
	}
	if f.SenderRole != "" {
		q = q.Where("senders.role = ?", f.SenderRole)
	}
	if f.ReceiverRole != "" {
		q = q.Where("receivers.role = ?", f.ReceiverRole)
	}
	if f.Search != "" {
		pattern := "%" + f.Search + "%"
		q = q.Where(`senders.name ILIKE ? OR senders.email ILIKE ? OR senders.phone ILIKE ?
			OR receivers.name ILIKE ? OR receivers.email ILIKE ? OR receivers.phone ILIKE ?
			OR transactions.transaction_id ILIKE ? OR transactions.description ILIKE ?`,
			pattern, pattern, pattern, pattern, pattern, pattern, pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	column, ok := transactionSortColumns[f.SortBy]
	if !ok {
		column = "transactions.created_at"
	}
	direction := "DESC"
	if f.SortOrder == "asc" {
		direction = "ASC"
	}

	var txs []models.Transaction
	err := q.Select("transactions.*").
		Order(column + " " + direction).
		Limit(f.Limit).
		Offset((f.Page - 1) * f.Limit).
		Find(&txs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return r.attachParties(ctx, txs, total)
}

func (r *transactionRepository) GetForParticipant(ctx context.Context, id, userID uint) (*TransactionWithParties, error) {
	var tx models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Where("sender_id = ? OR receiver_id = ?", userID, userID).
		First(&tx).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	rows, _, err := r.attachParties(ctx, []models.Transaction{tx}, 1)
	if err != nil {
		return nil, err
	}
	return &rows[0], nil
}

func (r *transactionRepository) Stats(ctx context.Context) (TransactionStats, error) {
	var stats TransactionStats
	db := r.db.WithContext(ctx).Model(&models.Transaction{})

	if err := db.Count(&stats.TotalTransactions).Error; err != nil {
		return stats, fmt.Errorf("failed to count transactions: %w", err)
	}
	err := r.db.WithContext(ctx).
		Model(&models.Transaction{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalVolume).Error
	if err != nil {
		return stats, fmt.Errorf("failed to sum transaction volume: %w", err)
	}
	return stats, nil
}

// attachParties batch-loads the sender/receiver users referenced by a page
// of ledger entries.
func (r *transactionRepository) attachParties(ctx context.Context, txs []models.Transaction, total int64) ([]TransactionWithParties, int64, error) {
	idSet := make(map[uint]struct{})
	for _, tx := range txs {
		if tx.SenderID != nil {
			idSet[*tx.SenderID] = struct{}{}
		}
		if tx.ReceiverID != nil {
			idSet[*tx.ReceiverID] = struct{}{}
		}
	}

	byID := make(map[uint]*models.User, len(idSet))
	if len(idSet) > 0 {
		ids := make([]uint, 0, len(idSet))
		for id := range idSet {
			ids = append(ids, id)
		}
		var users []models.User
		if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to load transaction parties: %w", err)
		}
		for i := range users {
			byID[users[i].ID] = &users[i]
		}
	}

	rows := make([]TransactionWithParties, 0, len(txs))
	for _, tx := range txs {
		row := TransactionWithParties{Transaction: tx}
		if tx.SenderID != nil {
			row.Sender = byID[*tx.SenderID]
		}
		if tx.ReceiverID != nil {
			row.Receiver = byID[*tx.ReceiverID]
		}
		rows = append(rows, row)
	}
	return rows, total, nil
}
