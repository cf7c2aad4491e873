package transaction

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/hassan-nahid/digital-wallet-backend/internal/apperr"
	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	adminID = 1
	agentID = 2
	aliceID = 3
	bobID   = 4
)

func newTestStore() *memStore {
	ms := newMemStore()
	ms.seedUser(adminID, models.RoleAdmin, 1000)
	ms.seedUser(agentID, models.RoleAgent, 10000)
	ms.seedUser(aliceID, models.RoleUser, 5000)
	ms.seedUser(bobID, models.RoleUser, 50)
	ms.nextID = 100
	return ms
}

func requireStatus(t *testing.T, err error, status int, message string) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, status, apperr.StatusOf(err))
	assert.EqualError(t, err, message)
}

func TestAddMoney(t *testing.T) {
	t.Run("credits wallet and appends approved entry", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: aliceID, Amount: 200})
		require.NoError(t, err)

		assert.Equal(t, 5200.0, res.NewBalance)
		assert.Equal(t, 5200.0, ms.balance(aliceID))
		require.Len(t, ms.entries, 1)
		entry := ms.entries[0]
		assert.Equal(t, models.TransactionTypeAddMoney, entry.Type)
		assert.Equal(t, models.TransactionStatusApproved, entry.Status)
		assert.Nil(t, entry.SenderID)
		require.NotNil(t, entry.ReceiverID)
		assert.Equal(t, uint(aliceID), *entry.ReceiverID)
		assert.Equal(t, 0.0, entry.Fee)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: aliceID, Amount: 0})
		requireStatus(t, err, http.StatusBadRequest, "Amount must be greater than zero")
	})

	t.Run("rejects amount over the top-up ceiling", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: aliceID, Amount: 50001})
		requireStatus(t, err, http.StatusBadRequest, "You cannot top up more than 50,000 at once")
	})

	t.Run("rejects blocked user", func(t *testing.T) {
		ms := newTestStore()
		ms.users[aliceID].IsActive = models.StatusBlocked
		svc := NewService(ms, nil, nil)

		_, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: aliceID, Amount: 200})
		requireStatus(t, err, http.StatusForbidden, "User is blocked")
		assert.Equal(t, 5000.0, ms.balance(aliceID))
	})

	t.Run("rejects blocked wallet", func(t *testing.T) {
		ms := newTestStore()
		ms.wallets[aliceID].IsBlocked = true
		svc := NewService(ms, nil, nil)

		_, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: aliceID, Amount: 200})
		requireStatus(t, err, http.StatusForbidden, "Wallet is blocked")
	})

	t.Run("unknown user maps to not found", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.AddMoney(context.Background(), AddMoneyInput{UserID: 999, Amount: 200})
		requireStatus(t, err, http.StatusNotFound, "User not found")
	})
}

func TestSendMoney(t *testing.T) {
	t.Run("transfers amount and routes fee to admin", func(t *testing.T) {
		ms := newTestStore()
		invalidator := &recordingInvalidator{}
		svc := NewService(ms, invalidator, nil)

		res, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 2000,
		})
		require.NoError(t, err)

		assert.Equal(t, 5000.0-2010, ms.balance(aliceID))
		assert.Equal(t, 50.0+2000, ms.balance(bobID))
		assert.Equal(t, 1000.0+10, ms.balance(adminID))
		assert.Equal(t, 10.0, ms.wallets[adminID].AdminProfit)

		require.Len(t, ms.entries, 3)
		assert.Equal(t, models.TransactionTypeSendMoney, res.SenderTransaction.Type)
		assert.Equal(t, 10.0, res.SenderTransaction.Fee)
		assert.Equal(t, models.TransactionTypeAddMoney, res.ReceiverTransaction.Type)
		require.NotNil(t, res.FeeTransaction)
		assert.Equal(t, models.TransactionTypeAdminProfit, res.FeeTransaction.Type)
		assert.Equal(t, 10.0, res.FeeTransaction.Amount)

		assert.ElementsMatch(t, []uint{aliceID, bobID, adminID}, invalidator.invalidated)
	})

	t.Run("small transfer carries no fee entry", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 500,
		})
		require.NoError(t, err)

		assert.Nil(t, res.FeeTransaction)
		assert.Len(t, ms.entries, 2)
		assert.Equal(t, 4500.0, ms.balance(aliceID))
		assert.Equal(t, 1000.0, ms.balance(adminID))
	})

	t.Run("rejects self transfer", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: aliceID, Amount: 100,
		})
		requireStatus(t, err, http.StatusBadRequest, "Cannot send money to yourself")
	})

	t.Run("insufficient balance leaves every wallet untouched", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		_, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: bobID, ReceiverID: aliceID, Amount: 5000,
		})
		requireStatus(t, err, http.StatusBadRequest, "Insufficient balance")

		assert.Equal(t, 50.0, ms.balance(bobID))
		assert.Equal(t, 5000.0, ms.balance(aliceID))
		assert.Empty(t, ms.entries)
	})

	t.Run("fee makes an exact-balance transfer insufficient", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		// Balance covers the amount but not amount plus fee.
		_, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 5000,
		})
		requireStatus(t, err, http.StatusBadRequest, "Insufficient balance")
	})

	t.Run("rejects blocked receiver wallet", func(t *testing.T) {
		ms := newTestStore()
		ms.wallets[bobID].IsBlocked = true
		svc := NewService(ms, nil, nil)

		_, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 100,
		})
		requireStatus(t, err, http.StatusForbidden, "Sender or Receiver wallet is blocked")
	})

	t.Run("rolls back wallet updates when a ledger append fails", func(t *testing.T) {
		ms := newTestStore()
		ms.createTx = errors.New("ledger unavailable")
		svc := NewService(ms, nil, nil)

		_, err := svc.SendMoney(context.Background(), SendMoneyInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 2000,
		})
		require.Error(t, err)

		assert.Equal(t, 5000.0, ms.balance(aliceID))
		assert.Equal(t, 50.0, ms.balance(bobID))
		assert.Equal(t, 1000.0, ms.balance(adminID))
		assert.Empty(t, ms.entries)
	})
}

func TestCashIn(t *testing.T) {
	t.Run("agent credits user wallet", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: agentID, ReceiverID: aliceID, Amount: 2000,
		})
		require.NoError(t, err)

		assert.Equal(t, 8000.0, ms.balance(agentID))
		assert.Equal(t, 7000.0, ms.balance(aliceID))
		require.Len(t, ms.entries, 2)
		assert.Equal(t, models.TransactionTypeCashIn, res.SenderTransaction.Type)
		assert.Equal(t, models.TransactionTypeAddMoney, res.ReceiverTransaction.Type)
	})

	t.Run("admin replenishes agent float", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: adminID, ReceiverID: agentID, Amount: 500,
		})
		require.NoError(t, err)
		assert.Equal(t, 500.0, ms.balance(adminID))
		assert.Equal(t, 10500.0, ms.balance(agentID))
	})

	t.Run("regular user cannot cash in", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "Only agents or admins can cash in money")
	})

	t.Run("unapproved agent cannot cash in", func(t *testing.T) {
		ms := newTestStore()
		ms.users[agentID].IsAgentApproved = false
		svc := NewService(ms, nil, nil)

		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: agentID, ReceiverID: aliceID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "Agent approval is required to cash in money")
	})

	t.Run("admin cannot cash in directly to a user", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: adminID, ReceiverID: aliceID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "Invalid cash-in permission between these roles")
	})

	t.Run("amount must exceed the floor", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: agentID, ReceiverID: aliceID, Amount: 100,
		})
		requireStatus(t, err, http.StatusBadRequest, "Amount must be greater than 100")
	})

	t.Run("rejects amount over the cash-in ceiling", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashIn(context.Background(), CashInInput{
			SenderID: agentID, ReceiverID: aliceID, Amount: 100001,
		})
		requireStatus(t, err, http.StatusBadRequest, "You cannot send more than 100000 at once")
	})
}

func TestCashOut(t *testing.T) {
	t.Run("user cash out splits fee between agent and admin", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: aliceID, ReceiverID: agentID, Amount: 2500,
		})
		require.NoError(t, err)

		// 2 complete thousands: fee 20, commission 8, admin profit 12.
		assert.Equal(t, 5000.0-2520, ms.balance(aliceID))
		assert.Equal(t, 10000.0+2500+8, ms.balance(agentID))
		assert.Equal(t, 8.0, ms.wallets[agentID].Commission)
		assert.Equal(t, 1000.0+12, ms.balance(adminID))
		assert.Equal(t, 12.0, ms.wallets[adminID].AdminProfit)

		require.Len(t, ms.entries, 4)
		assert.Equal(t, models.TransactionTypeCashOut, res.SenderTransaction.Type)
		assert.Equal(t, 20.0, res.SenderTransaction.Fee)
		require.NotNil(t, res.AdminTransaction)
		assert.Equal(t, models.TransactionTypeAdminProfit, res.AdminTransaction.Type)
		require.NotNil(t, res.CommissionTransaction)
		assert.Equal(t, models.TransactionTypeCommission, res.CommissionTransaction.Type)
		assert.Equal(t, 8.0, res.CommissionTransaction.Amount)
	})

	t.Run("money is conserved across the split", func(t *testing.T) {
		ms := newTestStore()
		before := ms.balance(adminID) + ms.balance(agentID) + ms.balance(aliceID) + ms.balance(bobID)
		svc := NewService(ms, nil, nil)

		_, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: aliceID, ReceiverID: agentID, Amount: 2500,
		})
		require.NoError(t, err)

		after := ms.balance(adminID) + ms.balance(agentID) + ms.balance(aliceID) + ms.balance(bobID)
		assert.Equal(t, before, after)
	})

	t.Run("agent settles with admin at no cost", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: agentID, ReceiverID: adminID, Amount: 5000,
		})
		require.NoError(t, err)

		assert.Equal(t, 5000.0, ms.balance(agentID))
		assert.Equal(t, 6000.0, ms.balance(adminID))
		assert.Equal(t, 0.0, ms.wallets[adminID].AdminProfit)
		assert.Nil(t, res.AdminTransaction)
		assert.Nil(t, res.CommissionTransaction)
		assert.Len(t, ms.entries, 2)
	})

	t.Run("user cannot cash out to another user", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: aliceID, ReceiverID: bobID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "User can only cash out to an Agent")
	})

	t.Run("agent cannot cash out to a user", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: agentID, ReceiverID: aliceID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "Agent can only cash out to an Admin")
	})

	t.Run("admin cannot cash out", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: adminID, ReceiverID: agentID, Amount: 500,
		})
		requireStatus(t, err, http.StatusForbidden, "Invalid cash-out permission between these roles")
	})

	t.Run("fee counts toward the sufficiency check", func(t *testing.T) {
		ms := newTestStore()
		ms.wallets[aliceID].Balance = 2500
		svc := NewService(ms, nil, nil)

		_, err := svc.CashOut(context.Background(), CashOutInput{
			SenderID: aliceID, ReceiverID: agentID, Amount: 2500,
		})
		requireStatus(t, err, http.StatusBadRequest, "Insufficient balance")
		assert.Equal(t, 2500.0, ms.balance(aliceID))
		assert.Empty(t, ms.entries)
	})
}

func TestAdminWithdraw(t *testing.T) {
	t.Run("debits the admin wallet", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.AdminWithdraw(context.Background(), AdminWithdrawInput{UserID: adminID, Amount: 400})
		require.NoError(t, err)

		assert.Equal(t, 600.0, res.NewBalance)
		assert.Equal(t, 600.0, ms.balance(adminID))
		require.Len(t, ms.entries, 1)
		assert.Equal(t, models.TransactionTypeAdminWithdraw, ms.entries[0].Type)
	})

	t.Run("treasury balance may go negative", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		res, err := svc.AdminWithdraw(context.Background(), AdminWithdrawInput{UserID: adminID, Amount: 5000})
		require.NoError(t, err)
		assert.Equal(t, -4000.0, res.NewBalance)
	})

	t.Run("non-admin cannot withdraw", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.AdminWithdraw(context.Background(), AdminWithdrawInput{UserID: agentID, Amount: 400})
		requireStatus(t, err, http.StatusForbidden, "Only admins can withdraw money")
	})

	t.Run("rejects amount over the withdrawal ceiling", func(t *testing.T) {
		svc := NewService(newTestStore(), nil, nil)
		_, err := svc.AdminWithdraw(context.Background(), AdminWithdrawInput{UserID: adminID, Amount: 100001})
		requireStatus(t, err, http.StatusBadRequest, "You cannot withdraw more than 100,000 at once")
	})
}

func TestLockWalletPairOrdering(t *testing.T) {
	ctx := context.Background()

	t.Run("ascending arguments lock in argument order", func(t *testing.T) {
		ms := newTestStore()
		first, second, err := lockWalletPair(ctx, ms, aliceID, bobID)
		require.NoError(t, err)
		assert.Equal(t, uint(aliceID), first.UserID)
		assert.Equal(t, uint(bobID), second.UserID)
		assert.Equal(t, []uint{aliceID, bobID}, ms.lockLog)
	})

	t.Run("descending arguments still acquire ascending", func(t *testing.T) {
		ms := newTestStore()
		first, second, err := lockWalletPair(ctx, ms, bobID, aliceID)
		require.NoError(t, err)
		// Returned wallets follow the argument order while the lock log
		// stays ascending by user id.
		assert.Equal(t, uint(bobID), first.UserID)
		assert.Equal(t, uint(aliceID), second.UserID)
		assert.Equal(t, []uint{aliceID, bobID}, ms.lockLog)
	})

	t.Run("opposite transfers lock the same pair in the same order", func(t *testing.T) {
		ms := newTestStore()
		svc := NewService(ms, nil, nil)

		_, err := svc.SendMoney(ctx, SendMoneyInput{SenderID: aliceID, ReceiverID: bobID, Amount: 200})
		require.NoError(t, err)
		_, err = svc.SendMoney(ctx, SendMoneyInput{SenderID: bobID, ReceiverID: aliceID, Amount: 100})
		require.NoError(t, err)

		assert.Equal(t, []uint{aliceID, bobID, aliceID, bobID}, ms.lockLog)
	})
}

func TestConcurrentTransfersKeepBalancesNonNegative(t *testing.T) {
	ms := newTestStore()
	svc := NewService(ms, nil, nil)
	ctx := context.Background()

	wallets := []uint{adminID, agentID, aliceID, bobID}
	before := 0.0
	for _, id := range wallets {
		before += ms.balance(id)
	}

	// More debit attempts than the balances can cover, so some operations
	// must be rejected while the rest interleave.
	var wg sync.WaitGroup
	errs := make(chan error, 60)
	run := func(fn func() error) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := fn(); err != nil {
				errs <- err
			}
		}()
	}
	for i := 0; i < 20; i++ {
		run(func() error {
			_, err := svc.SendMoney(ctx, SendMoneyInput{SenderID: aliceID, ReceiverID: bobID, Amount: 1500})
			return err
		})
		run(func() error {
			_, err := svc.SendMoney(ctx, SendMoneyInput{SenderID: bobID, ReceiverID: aliceID, Amount: 1200})
			return err
		})
		run(func() error {
			_, err := svc.CashOut(ctx, CashOutInput{SenderID: aliceID, ReceiverID: agentID, Amount: 1500})
			return err
		})
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.EqualError(t, err, "Insufficient balance")
	}

	after := 0.0
	for _, id := range wallets {
		balance := ms.balance(id)
		assert.GreaterOrEqual(t, balance, 0.0, "wallet of user %d went negative", id)
		after += balance
	}
	assert.Equal(t, before, after, "transfers and cash-outs must conserve money")

	for _, e := range ms.entries {
		assert.Equal(t, models.TransactionStatusApproved, e.Status)
	}
}

func TestTransactionIDsAreUnique(t *testing.T) {
	ms := newTestStore()
	svc := NewService(ms, nil, nil)

	_, err := svc.CashOut(context.Background(), CashOutInput{
		SenderID: aliceID, ReceiverID: agentID, Amount: 2500,
	})
	require.NoError(t, err)
	_, err = svc.SendMoney(context.Background(), SendMoneyInput{
		SenderID: aliceID, ReceiverID: bobID, Amount: 1500,
	})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, e := range ms.entries {
		assert.NotEmpty(t, e.TransactionID)
		assert.False(t, seen[e.TransactionID], "duplicate transaction id %s", e.TransactionID)
		seen[e.TransactionID] = true
	}
}

func TestTransferScenario(t *testing.T) {
	ms := newMemStore()
	ms.seedUser(1, models.RoleAdmin, 1000)
	ms.seedUser(2, models.RoleUser, 50)
	ms.seedUser(3, models.RoleUser, 50)
	ms.nextID = 100
	svc := NewService(ms, nil, nil)
	ctx := context.Background()

	// A freshly opened wallet cannot cover a large transfer.
	_, err := svc.SendMoney(ctx, SendMoneyInput{SenderID: 2, ReceiverID: 3, Amount: 5000})
	requireStatus(t, err, http.StatusBadRequest, "Insufficient balance")
	assert.Empty(t, ms.entries)

	_, err = svc.AddMoney(ctx, AddMoneyInput{UserID: 2, Amount: 5950})
	require.NoError(t, err)
	assert.Equal(t, 6000.0, ms.balance(2))

	_, err = svc.SendMoney(ctx, SendMoneyInput{SenderID: 2, ReceiverID: 3, Amount: 5000})
	require.NoError(t, err)

	assert.Equal(t, 990.0, ms.balance(2))
	assert.Equal(t, 5050.0, ms.balance(3))
	assert.Equal(t, 1010.0, ms.balance(1))

	for _, e := range ms.entries {
		assert.Equal(t, models.TransactionStatusApproved, e.Status)
	}
	assert.Len(t, ms.entries, 4)
}
