package transaction

import (
	"math"

	"github.com/hassan-nahid/digital-wallet-backend/internal/models"
)

// SendMoneyFee returns the flat fee charged to the sender of a peer
// transfer: free below 1000, 10 up to 20000, 15 above.
func SendMoneyFee(amount float64) float64 {
	switch {
	case amount < SendMoneyFeeThreshold:
		return 0
	case amount <= SendMoneyHighTierMax:
		return SendMoneyStandardFee
	default:
		return SendMoneyExtendedFee
	}
}

// CashOutSplit computes the fee charged to the sender and how it divides
// between the receiving agent's commission and the platform admin's profit.
// Only a USER cashing out to an AGENT pays; an AGENT settling with the
// ADMIN moves money at no cost.
func CashOutSplit(amount float64, senderRole, receiverRole string) (fee, commission, adminProfit float64) {
	if senderRole == models.RoleUser && receiverRole == models.RoleAgent {
		unit := math.Floor(amount / 1000)
		return unit * CashOutFeePerUnit, unit * CashOutCommissionPerUnit, unit * CashOutAdminProfitPerUnit
	}
	return 0, 0, 0
}
