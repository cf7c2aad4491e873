package transaction

// Per-operation amount limits.
const (
	MaxTopUpAmount         = 50000.0
	MaxSendAmount          = 50000.0
	MinCashAmount          = 100.0
	MaxCashInAmount        = 100000.0
	MaxCashOutAmount       = 50000.0
	MaxAdminWithdrawAmount = 100000.0
)

// Send-money fee tiers.
const (
	SendMoneyFeeThreshold = 1000.0
	SendMoneyHighTierMax  = 20000.0
	SendMoneyStandardFee  = 10.0
	SendMoneyExtendedFee  = 15.0
)

// Cash-out split, per full 1000 of the principal. Commission plus admin
// profit always equals the fee.
const (
	CashOutFeePerUnit         = 10.0
	CashOutCommissionPerUnit  = 4.0
	CashOutAdminProfitPerUnit = 6.0
)

// Default pagination for the query side.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)
