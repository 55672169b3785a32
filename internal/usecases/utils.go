package usecases

import (
	"fmt"

	"github.com/shopspring/decimal"
	domainerrors "open-wallet.backend/internal/domain/errors"
)

// validatePositiveAmount rejects non-positive amounts and amounts with
// more fractional digits than the currency precision allows.
func validatePositiveAmount(amount decimal.Decimal, precision int32) error {
	if !amount.IsPositive() {
		return domainerrors.ErrInvalidAmount
	}
	if amount.Exponent() < -precision && !amount.Equal(amount.Truncate(precision)) {
		return fmt.Errorf("%w: at most %d decimal places allowed", domainerrors.ErrInvalidAmount, precision)
	}
	return nil
}
