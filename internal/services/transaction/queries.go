package transaction

import (
	"context"
	"errors"

	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
)

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	return page, limit
}

func buildPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage:       page,
		TotalPages:        totalPages,
		TotalTransactions: total,
		HasNextPage:       page < totalPages,
		HasPrevPage:       page > 1,
	}
}

func toParty(u *models.User) *Party {
	if u == nil {
		return nil
	}
	return &Party{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Phone: u.Phone,
		Role:  u.Role,
	}
}

func toResponse(row repositories.TransactionWithParties) TransactionResponse {
	tx := row.Transaction
	return TransactionResponse{
		ID:            tx.ID,
		TransactionID: tx.TransactionID,
		Type:          tx.Type,
		Amount:        tx.Amount,
		Fee:           tx.Fee,
		Status:        tx.Status,
		Description:   tx.Description,
		WalletID:      tx.WalletID,
		Sender:        toParty(row.Sender),
		Receiver:      toParty(row.Receiver),
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

func toPage(rows []repositories.TransactionWithParties, page, limit int, total int64) *TransactionPage {
	responses := make([]TransactionResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, toResponse(row))
	}
	return &TransactionPage{
		Transactions: responses,
		Pagination:   buildPagination(page, limit, total),
	}
}

func (s *service) GetMyTransactions(ctx context.Context, userID uint, f repositories.MyTransactionsFilter) (*TransactionPage, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	rows, total, err := s.store.Transactions().ListForUser(ctx, userID, f)
	if err != nil {
		return nil, err
	}
	return toPage(rows, f.Page, f.Limit, total), nil
}

func (s *service) GetAllTransactions(ctx context.Context, f repositories.ListTransactionsFilter) (*TransactionPage, error) {
	f.Page, f.Limit = normalizePage(f.Page, f.Limit)
	rows, total, err := s.store.Transactions().List(ctx, f)
	if err != nil {
		return nil, err
	}
	return toPage(rows, f.Page, f.Limit, total), nil
}

func (s *service) GetMyTransactionByID(ctx context.Context, userID, id uint) (*TransactionResponse, error) {
	row, err := s.store.Transactions().GetForParticipant(ctx, id, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return nil, apperr.NotFound("Transaction not found or access denied")
		}
		return nil, err
	}
	resp := toResponse(*row)
	return &resp, nil
}

func (s *service) GetAnalytics(ctx context.Context) (*repositories.TransactionStats, error) {
	stats, err := s.store.Transactions().Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
