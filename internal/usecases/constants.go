package usecases

import "github.com/shopspring/decimal"

// Ledger defaults, overridable through configuration.
const (
	DefaultCurrency          = "USD"
	DefaultCurrencyPrecision = 2
)

var (
	// DefaultMinBalance is the lowest balance any wallet may hold.
	DefaultMinBalance = decimal.Zero
	// DefaultMaxBalance is the highest balance any wallet may hold.
	DefaultMaxBalance = decimal.NewFromInt(10000)
	// DefaultPerTransactionLimit is applied to agents registered without
	// an explicit policy.
	DefaultPerTransactionLimit = decimal.NewFromInt(1000)
)

// LedgerConfig carries the balance invariants the account manager
// enforces on every mutation.
type LedgerConfig struct {
	DefaultCurrency string
	MinBalance      decimal.Decimal
	MaxBalance      decimal.Decimal
	// Precision is the number of fractional digits a currency allows.
	// Inputs carrying more digits are rejected, not rounded.
	Precision int32
}

// DefaultLedgerConfig returns the default ledger configuration
func DefaultLedgerConfig() LedgerConfig {
	return LedgerConfig{
		DefaultCurrency: DefaultCurrency,
		MinBalance:      DefaultMinBalance,
		MaxBalance:      DefaultMaxBalance,
		Precision:       DefaultCurrencyPrecision,
	}
}

// AgentConfig carries the policy defaults applied at agent registration.
type AgentConfig struct {
	DefaultPerTransactionLimit decimal.Decimal
}

// DefaultAgentConfig returns the default agent configuration
func DefaultAgentConfig() AgentConfig {
	return AgentConfig{
		DefaultPerTransactionLimit: DefaultPerTransactionLimit,
	}
}
