package model

import (
	"errors"
	"fmt"

	"github.com/saldo-finance/saldo/internal/apierror"
	"github.com/shopspring/decimal"
)

// CanDebit is the single place debit arithmetic is checked before any remote
// call is attempted. It rejects non-positive amounts and debits that would
// leave the balance negative. Pure: no I/O, no side effects.
func CanDebit(balance, amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return apierror.NewValidationError(apierror.ErrNonPositiveAmount,
			fmt.Sprintf("amount must be positive, got %s", amount))
	}
	if amount.GreaterThan(balance) {
		return apierror.NewValidationError(apierror.ErrInsufficientFunds,
			fmt.Sprintf("amount %s exceeds balance %s", amount, balance))
	}
	return nil
}

// CanSetBalance rejects any direct balance update that would store a
// negative value. Committed account balances are always >= 0.
func CanSetBalance(newBalance decimal.Decimal) error {
	if newBalance.Sign() < 0 {
		return apierror.NewValidationError(apierror.ErrInvalidInput,
			fmt.Sprintf("balance cannot be negative, got %s", newBalance))
	}
	return nil
}

// nonNegativeAmount is an ozzo rule wrapper around CanSetBalance.
func nonNegativeAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	return CanSetBalance(amount)
}

// positiveAmount is an ozzo rule requiring a strictly positive amount.
func positiveAmount(value interface{}) error {
	amount, ok := value.(decimal.Decimal)
	if !ok {
		return errors.New("must be a decimal amount")
	}
	if amount.Sign() <= 0 {
		return apierror.NewValidationError(apierror.ErrNonPositiveAmount,
			fmt.Sprintf("amount must be positive, got %s", amount))
	}
	return nil
}
