package transaction

import (
	"time"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
)

// AddMoneyInput tops up the target user's wallet from an external source.
type AddMoneyInput struct {
	UserID      uint
	Amount      float64
	Description string
}

// SendMoneyInput is a peer transfer.
type SendMoneyInput struct {
	SenderID    uint
	ReceiverID  uint
	Amount      float64
	Description string
}

// CashInInput is an agent or admin injecting funds into a wallet.
type CashInInput struct {
	SenderID    uint
	ReceiverID  uint
	Amount      float64
	Description string
}

// CashOutInput is a user or agent withdrawing through an agent or admin.
type CashOutInput struct {
	SenderID    uint
	ReceiverID  uint
	Amount      float64
	Description string
}

// AdminWithdrawInput moves money out of the admin wallet to an external
// account.
type AdminWithdrawInput struct {
	UserID      uint
	Amount      float64
	Description string
}

type AddMoneyResult struct {
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  float64             `json:"newBalance"`
}

type SendMoneyResult struct {
	SenderTransaction   *models.Transaction `json:"senderTransaction"`
	ReceiverTransaction *models.Transaction `json:"receiverTransaction"`
	FeeTransaction      *models.Transaction `json:"feeTransaction"`
}

type CashInResult struct {
	SenderTransaction   *models.Transaction `json:"senderTransaction"`
	ReceiverTransaction *models.Transaction `json:"receiverTransaction"`
}

type CashOutResult struct {
	SenderTransaction     *models.Transaction `json:"senderTransaction"`
	ReceiverTransaction   *models.Transaction `json:"receiverTransaction"`
	AdminTransaction      *models.Transaction `json:"adminTransaction"`
	CommissionTransaction *models.Transaction `json:"commissionTransaction"`
}

type AdminWithdrawResult struct {
	Transaction *models.Transaction `json:"transaction"`
	NewBalance  float64             `json:"newBalance"`
}

// Party is the participant summary embedded in query responses.
type Party struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  string `json:"role,omitempty"`
}

// TransactionResponse is one ledger entry shaped for the API.
type TransactionResponse struct {
	ID            uint      `json:"id"`
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"transactionType"`
	Amount        float64   `json:"amount"`
	Fee           float64   `json:"fee"`
	Status        string    `json:"status"`
	Description   string    `json:"description"`
	WalletID      uint      `json:"walletId"`
	Sender        *Party    `json:"sender"`
	Receiver      *Party    `json:"receiver"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Pagination struct {
	CurrentPage       int   `json:"currentPage"`
	TotalPages        int   `json:"totalPages"`
	TotalTransactions int64 `json:"totalTransactions"`
	HasNextPage       bool  `json:"hasNextPage"`
	HasPrevPage       bool  `json:"hasPrevPage"`
}

type TransactionPage struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   Pagination            `json:"pagination"`
}
