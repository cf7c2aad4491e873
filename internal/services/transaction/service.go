package transaction

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/hassan-nahid/digital-wallet-backend/internal/repositories"
)

type service struct {
	store   repositories.Store
	cache   CacheInvalidator
	metrics MetricsCollector
}

// NewService creates the transaction engine.
func NewService(store repositories.Store, cache CacheInvalidator, metrics MetricsCollector) Service {
	if store == nil {
		panic("store is required")
	}
	if cache == nil {
		cache = NoopInvalidator{}
	}
	if metrics == nil {
		metrics = NoopMetricsCollector{}
	}
	return &service{
		store:   store,
		cache:   cache,
		metrics: metrics,
	}
}

func newTransactionID() string {
	return "tr_id_" + uuid.NewString()
}

func newEntry(sender, receiver *uint, walletID uint, txType string, amount, fee float64, description, fallback string) *models.Transaction {
	if description == "" {
		description = fallback
	}
	return &models.Transaction{
		SenderID:      sender,
		ReceiverID:    receiver,
		WalletID:      walletID,
		TransactionID: newTransactionID(),
		Type:          txType,
		Amount:        amount,
		Fee:           fee,
		Status:        models.TransactionStatusApproved,
		Description:   description,
	}
}

// notFoundOr maps a repository miss to a caller-visible 404 with the given
// message, leaving infrastructure errors untouched.
func notFoundOr(err error, message string) error {
	if errors.Is(err, repositories.ErrUserNotFound) || errors.Is(err, repositories.ErrWalletNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

// lockWalletPair locks both wallets under FOR UPDATE in ascending user-id
// order, so two concurrent operations moving money in opposite directions
// between the same pair cannot deadlock.
func lockWalletPair(ctx context.Context, st repositories.Store, aID, bID uint) (*models.Wallet, *models.Wallet, error) {
	firstID, secondID := aID, bID
	if bID < aID {
		firstID, secondID = bID, aID
	}
	first, err := st.Wallets().GetByUserIDForUpdate(ctx, firstID)
	if err != nil {
		return nil, nil, err
	}
	second, err := st.Wallets().GetByUserIDForUpdate(ctx, secondID)
	if err != nil {
		return nil, nil, err
	}
	if firstID == aID {
		return first, second, nil
	}
	return second, first, nil
}

func (s *service) invalidateWallets(ctx context.Context, userIDs ...uint) {
	for _, id := range userIDs {
		_ = s.cache.InvalidateWallet(ctx, id)
	}
}

func (s *service) AddMoney(ctx context.Context, in AddMoneyInput) (*AddMoneyResult, error) {
	if in.Amount <= 0 {
		return nil, apperr.BadRequest("Amount must be greater than zero")
	}
	if in.Amount > MaxTopUpAmount {
		return nil, apperr.BadRequest("You cannot top up more than 50,000 at once")
	}

	var result AddMoneyResult
	err := s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		user, err := st.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, "User not found")
		}
		if user.IsBlocked() {
			return apperr.Forbidden("User is blocked")
		}

		wallet, err := st.Wallets().GetByUserIDForUpdate(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, "Wallet not found")
		}
		if wallet.IsBlocked {
			return apperr.Forbidden("Wallet is blocked")
		}

		wallet.Balance += in.Amount
		if err := st.Wallets().Update(ctx, wallet); err != nil {
			return err
		}

		entry := newEntry(nil, &in.UserID, wallet.ID, models.TransactionTypeAddMoney,
			in.Amount, 0, in.Description, "Wallet top-up from external source")
		if err := st.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = AddMoneyResult{Transaction: entry, NewBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("add_money", err.Error())
		return nil, err
	}

	s.invalidateWallets(ctx, in.UserID)
	s.metrics.RecordTransaction(models.TransactionTypeAddMoney, in.Amount)
	return &result, nil
}

func (s *service) SendMoney(ctx context.Context, in SendMoneyInput) (*SendMoneyResult, error) {
	if in.SenderID == in.ReceiverID {
		return nil, apperr.BadRequest("Cannot send money to yourself")
	}
	if in.Amount <= 0 {
		return nil, apperr.BadRequest("Amount must be greater than zero")
	}
	if in.Amount > MaxSendAmount {
		return nil, apperr.BadRequest("You cannot send more than 50,000 at once")
	}

	fee := SendMoneyFee(in.Amount)
	totalToDeduct := in.Amount + fee

	var result SendMoneyResult
	var adminID uint
	err := s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		sender, err := st.Users().GetByID(ctx, in.SenderID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		receiver, err := st.Users().GetByID(ctx, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		if sender.IsBlocked() || receiver.IsBlocked() {
			return apperr.Forbidden("Sender or Receiver user is blocked")
		}

		senderWallet, receiverWallet, err := lockWalletPair(ctx, st, in.SenderID, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver wallet not found")
		}
		if senderWallet.IsBlocked || receiverWallet.IsBlocked {
			return apperr.Forbidden("Sender or Receiver wallet is blocked")
		}
		if senderWallet.Balance < totalToDeduct {
			return apperr.BadRequest("Insufficient balance")
		}

		senderWallet.Balance -= totalToDeduct
		receiverWallet.Balance += in.Amount
		if err := st.Wallets().Update(ctx, senderWallet); err != nil {
			return err
		}
		if err := st.Wallets().Update(ctx, receiverWallet); err != nil {
			return err
		}

		senderEntry := newEntry(&in.SenderID, &in.ReceiverID, senderWallet.ID,
			models.TransactionTypeSendMoney, in.Amount, fee, in.Description, "Money sent")
		if err := st.Transactions().Create(ctx, senderEntry); err != nil {
			return err
		}
		receiverEntry := newEntry(&in.SenderID, &in.ReceiverID, receiverWallet.ID,
			models.TransactionTypeAddMoney, in.Amount, 0, in.Description, "Money received")
		if err := st.Transactions().Create(ctx, receiverEntry); err != nil {
			return err
		}

		result = SendMoneyResult{SenderTransaction: senderEntry, ReceiverTransaction: receiverEntry}

		if fee > 0 {
			// The admin wallet is locked after the ordered sender/receiver
			// pair. A concurrent cash-in already holding the admin lock can
			// deadlock against this; the database aborts one of the two and
			// the caller sees a retryable infrastructure error.
			admin, err := st.Users().GetAdmin(ctx)
			if err != nil {
				return notFoundOr(err, "Admin user not found")
			}
			adminWallet, err := st.Wallets().GetByUserIDForUpdate(ctx, admin.ID)
			if err != nil {
				return notFoundOr(err, "Admin wallet not found")
			}

			adminWallet.AdminProfit += fee
			adminWallet.Balance += fee
			if err := st.Wallets().Update(ctx, adminWallet); err != nil {
				return err
			}

			feeEntry := newEntry(&in.SenderID, &admin.ID, adminWallet.ID,
				models.TransactionTypeAdminProfit, fee, 0, "", "Admin fee from send money transaction")
			if err := st.Transactions().Create(ctx, feeEntry); err != nil {
				return err
			}
			result.FeeTransaction = feeEntry
			adminID = admin.ID
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("send_money", err.Error())
		return nil, err
	}

	touched := []uint{in.SenderID, in.ReceiverID}
	if adminID != 0 {
		touched = append(touched, adminID)
	}
	s.invalidateWallets(ctx, touched...)
	s.metrics.RecordTransaction(models.TransactionTypeSendMoney, in.Amount)
	return &result, nil
}

func (s *service) CashIn(ctx context.Context, in CashInInput) (*CashInResult, error) {
	if in.SenderID == in.ReceiverID {
		return nil, apperr.BadRequest("Cannot send money to yourself")
	}
	if in.Amount <= MinCashAmount {
		return nil, apperr.BadRequest("Amount must be greater than 100")
	}
	if in.Amount > MaxCashInAmount {
		return nil, apperr.BadRequest("You cannot send more than 100000 at once")
	}

	var result CashInResult
	err := s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		sender, err := st.Users().GetByID(ctx, in.SenderID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		receiver, err := st.Users().GetByID(ctx, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		if sender.IsBlocked() || receiver.IsBlocked() {
			return apperr.Forbidden("Sender or Receiver user is blocked")
		}

		if sender.Role != models.RoleAgent && sender.Role != models.RoleAdmin {
			return apperr.Forbidden("Only agents or admins can cash in money")
		}
		if sender.Role == models.RoleAgent && !sender.IsAgentApproved {
			return apperr.Forbidden("Agent approval is required to cash in money")
		}
		if receiver.Role == models.RoleAgent && !receiver.IsAgentApproved {
			return apperr.Forbidden("Agent approval is required to cash in money")
		}
		if (sender.Role == models.RoleAgent && receiver.Role != models.RoleUser) ||
			(sender.Role == models.RoleAdmin && receiver.Role != models.RoleAgent) {
			return apperr.Forbidden("Invalid cash-in permission between these roles")
		}

		senderWallet, receiverWallet, err := lockWalletPair(ctx, st, in.SenderID, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver wallet not found")
		}
		if senderWallet.IsBlocked || receiverWallet.IsBlocked {
			return apperr.Forbidden("Sender or Receiver wallet is blocked")
		}
		if senderWallet.Balance < in.Amount {
			return apperr.BadRequest("Insufficient balance")
		}

		senderWallet.Balance -= in.Amount
		receiverWallet.Balance += in.Amount
		if err := st.Wallets().Update(ctx, senderWallet); err != nil {
			return err
		}
		if err := st.Wallets().Update(ctx, receiverWallet); err != nil {
			return err
		}

		senderEntry := newEntry(&in.SenderID, &in.ReceiverID, senderWallet.ID,
			models.TransactionTypeCashIn, in.Amount, 0, in.Description, "Cash in money")
		if err := st.Transactions().Create(ctx, senderEntry); err != nil {
			return err
		}
		receiverEntry := newEntry(&in.SenderID, &in.ReceiverID, receiverWallet.ID,
			models.TransactionTypeAddMoney, in.Amount, 0, in.Description, "Money received")
		if err := st.Transactions().Create(ctx, receiverEntry); err != nil {
			return err
		}

		result = CashInResult{SenderTransaction: senderEntry, ReceiverTransaction: receiverEntry}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("cash_in", err.Error())
		return nil, err
	}

	s.invalidateWallets(ctx, in.SenderID, in.ReceiverID)
	s.metrics.RecordTransaction(models.TransactionTypeCashIn, in.Amount)
	return &result, nil
}

func (s *service) CashOut(ctx context.Context, in CashOutInput) (*CashOutResult, error) {
	if in.SenderID == in.ReceiverID {
		return nil, apperr.BadRequest("Cannot send money to yourself")
	}
	if in.Amount <= MinCashAmount {
		return nil, apperr.BadRequest("Amount must be greater than 100")
	}
	if in.Amount > MaxCashOutAmount {
		return nil, apperr.BadRequest("You cannot send more than 50000 at once")
	}

	var result CashOutResult
	var adminID uint
	err := s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		sender, err := st.Users().GetByID(ctx, in.SenderID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		receiver, err := st.Users().GetByID(ctx, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver user not found")
		}
		if sender.IsBlocked() || receiver.IsBlocked() {
			return apperr.Forbidden("Sender or Receiver user is blocked")
		}

		if sender.Role == models.RoleAgent && !sender.IsAgentApproved {
			return apperr.Forbidden("Agent approval is required to cash out money")
		}
		if receiver.Role == models.RoleAgent && !receiver.IsAgentApproved {
			return apperr.Forbidden("Agent approval is required to cash out money")
		}
		switch sender.Role {
		case models.RoleUser:
			if receiver.Role != models.RoleAgent {
				return apperr.Forbidden("User can only cash out to an Agent")
			}
		case models.RoleAgent:
			if receiver.Role != models.RoleAdmin {
				return apperr.Forbidden("Agent can only cash out to an Admin")
			}
		default:
			return apperr.Forbidden("Invalid cash-out permission between these roles")
		}

		fee, commission, adminProfit := CashOutSplit(in.Amount, sender.Role, receiver.Role)
		totalToDeduct := in.Amount + fee

		senderWallet, receiverWallet, err := lockWalletPair(ctx, st, in.SenderID, in.ReceiverID)
		if err != nil {
			return notFoundOr(err, "Sender or Receiver wallet not found")
		}
		if senderWallet.IsBlocked || receiverWallet.IsBlocked {
			return apperr.Forbidden("Sender or Receiver wallet is blocked")
		}
		if senderWallet.Balance < totalToDeduct {
			return apperr.BadRequest("Insufficient balance")
		}

		senderWallet.Balance -= totalToDeduct
		receiverWallet.Balance += in.Amount
		if err := st.Wallets().Update(ctx, senderWallet); err != nil {
			return err
		}
		if err := st.Wallets().Update(ctx, receiverWallet); err != nil {
			return err
		}

		senderEntry := newEntry(&in.SenderID, &in.ReceiverID, senderWallet.ID,
			models.TransactionTypeCashOut, in.Amount, fee, in.Description, "Cash out money")
		if err := st.Transactions().Create(ctx, senderEntry); err != nil {
			return err
		}
		receiverEntry := newEntry(&in.SenderID, &in.ReceiverID, receiverWallet.ID,
			models.TransactionTypeAddMoney, in.Amount, 0, in.Description, "Money received")
		if err := st.Transactions().Create(ctx, receiverEntry); err != nil {
			return err
		}
		result = CashOutResult{SenderTransaction: senderEntry, ReceiverTransaction: receiverEntry}

		if adminProfit > 0 {
			// Admin lock taken outside the ordered pair; a deadlock abort
			// surfaces as a retryable infrastructure error.
			admin, err := st.Users().GetAdmin(ctx)
			if err != nil {
				return notFoundOr(err, "Admin user not found")
			}
			adminWallet, err := st.Wallets().GetByUserIDForUpdate(ctx, admin.ID)
			if err != nil {
				return notFoundOr(err, "Admin wallet not found")
			}

			adminWallet.AdminProfit += adminProfit
			adminWallet.Balance += adminProfit
			if err := st.Wallets().Update(ctx, adminWallet); err != nil {
				return err
			}

			adminEntry := newEntry(&in.SenderID, &admin.ID, adminWallet.ID,
				models.TransactionTypeAdminProfit, adminProfit, 0, "", "Admin profit from cash out")
			if err := st.Transactions().Create(ctx, adminEntry); err != nil {
				return err
			}
			result.AdminTransaction = adminEntry
			adminID = admin.ID
		}

		if commission > 0 && receiver.Role == models.RoleAgent {
			receiverWallet.Commission += commission
			receiverWallet.Balance += commission
			if err := st.Wallets().Update(ctx, receiverWallet); err != nil {
				return err
			}

			commissionEntry := newEntry(&in.SenderID, &in.ReceiverID, receiverWallet.ID,
				models.TransactionTypeCommission, commission, 0, "", "Commission from cash out")
			if err := st.Transactions().Create(ctx, commissionEntry); err != nil {
				return err
			}
			result.CommissionTransaction = commissionEntry
		}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("cash_out", err.Error())
		return nil, err
	}

	touched := []uint{in.SenderID, in.ReceiverID}
	if adminID != 0 {
		touched = append(touched, adminID)
	}
	s.invalidateWallets(ctx, touched...)
	s.metrics.RecordTransaction(models.TransactionTypeCashOut, in.Amount)
	return &result, nil
}

// AdminWithdraw debits the admin wallet without a sufficiency floor: the
// admin wallet acts as the platform treasury and is allowed to go negative.
func (s *service) AdminWithdraw(ctx context.Context, in AdminWithdrawInput) (*AdminWithdrawResult, error) {
	if in.Amount <= 0 {
		return nil, apperr.BadRequest("Amount must be greater than zero")
	}
	if in.Amount > MaxAdminWithdrawAmount {
		return nil, apperr.BadRequest("You cannot withdraw more than 100,000 at once")
	}

	var result AdminWithdrawResult
	err := s.store.WithinTransaction(ctx, func(st repositories.Store) error {
		user, err := st.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, "User not found")
		}
		if user.IsBlocked() {
			return apperr.Forbidden("User is blocked")
		}
		if user.Role != models.RoleAdmin {
			return apperr.Forbidden("Only admins can withdraw money")
		}

		wallet, err := st.Wallets().GetByUserIDForUpdate(ctx, in.UserID)
		if err != nil {
			return notFoundOr(err, "Wallet not found")
		}
		if wallet.IsBlocked {
			return apperr.Forbidden("Wallet is blocked")
		}

		wallet.Balance -= in.Amount
		if err := st.Wallets().Update(ctx, wallet); err != nil {
			return err
		}

		entry := newEntry(&in.UserID, nil, wallet.ID, models.TransactionTypeAdminWithdraw,
			in.Amount, 0, in.Description, "Admin withdrawal to external account")
		if err := st.Transactions().Create(ctx, entry); err != nil {
			return err
		}

		result = AdminWithdrawResult{Transaction: entry, NewBalance: wallet.Balance}
		return nil
	})
	if err != nil {
		s.metrics.RecordError("admin_withdraw", err.Error())
		return nil, err
	}

	s.invalidateWallets(ctx, in.UserID)
	s.metrics.RecordTransaction(models.TransactionTypeAdminWithdraw, in.Amount)
	return &result, nil
}
