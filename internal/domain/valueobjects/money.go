// Package valueobjects - Money is the central value object of the ledger: it
// combines a decimal amount and a currency so the domain can never silently mix
// currencies or fall back to floating point for cents.
package valueobjects

import (
	"errors"
	"fmt"
	"math/big"
	"regexp"
)

// moneyPattern accepts plain decimal amounts with at most 2 fractional digits.
// Funding-session amounts arrive as plain positive numbers and go through
// this same constructor with an integer or already-rounded string, so the
// pattern stays permissive on fractional digits present (0, 1 or 2) rather
// than requiring exactly 2.
var moneyPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)

// decimalPlaces is fixed at 2 fractional digits for every currency this system
// handles. There is no crypto branch: this system is fiat-only.
const decimalPlaces = 2

// minorUnitsPerWhole is 10^decimalPlaces.
const minorUnitsPerWhole = 100

// Money represents a monetary amount with its currency.
// Uses big.Rat for arbitrary precision to avoid floating-point errors
// (0.1 + 0.2 != 0.3 must never happen to a ledger balance).
type Money struct {
	amount   *big.Rat
	currency Currency
}

var (
	ErrNegativeAmount     = errors.New("amount cannot be negative")
	ErrCurrencyMismatch   = errors.New("cannot operate on different currencies")
	ErrInsufficientAmount = errors.New("insufficient amount")
	ErrInvalidAmount      = errors.New("invalid amount format")
)

// NewMoney creates a Money instance from a decimal string amount with up to 2
// fractional digits, matching the API's wire format (e.g. "100.00").
func NewMoney(amountStr string, currency Currency) (Money, error) {
	if !moneyPattern.MatchString(amountStr) {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amountStr)
	}

	amount := new(big.Rat)
	if _, ok := amount.SetString(amountStr); !ok {
		return Money{}, fmt.Errorf("%w: %s", ErrInvalidAmount, amountStr)
	}

	if amount.Sign() < 0 {
		return Money{}, ErrNegativeAmount
	}

	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyFromMinorUnits creates Money from an integer number of minor units
// (cents). This is the preferred way to read/write money to the database
// decimal/bigint column.
func NewMoneyFromMinorUnits(minorUnits int64, currency Currency) (Money, error) {
	if minorUnits < 0 {
		return Money{}, ErrNegativeAmount
	}
	return Money{
		amount:   big.NewRat(minorUnits, minorUnitsPerWhole),
		currency: currency,
	}, nil
}

// NewSignedMoneyFromMinorUnits reconstructs a possibly-negative amount from
// its stored minor-unit representation. Only balance columns use it: a
// clearing wallet's running balance is allowed below zero, while every posted
// amount stays strictly positive.
func NewSignedMoneyFromMinorUnits(minorUnits int64, currency Currency) Money {
	return Money{
		amount:   big.NewRat(minorUnits, minorUnitsPerWhole),
		currency: currency,
	}
}

// Zero creates a zero money amount for the given currency.
func Zero(currency Currency) Money {
	return Money{amount: big.NewRat(0, 1), currency: currency}
}

// Currency returns the currency of this money.
func (m Money) Currency() Currency {
	return m.currency
}

// Amount returns a copy of the underlying rational amount.
func (m Money) Amount() *big.Rat {
	return new(big.Rat).Set(m.amount)
}

// String returns "100.00 USD".
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.FloatString(decimalPlaces), m.currency.Code())
}

// Decimal returns the fixed-point wire/storage representation, e.g. "100.00",
// always with exactly 2 fractional digits.
func (m Money) Decimal() string {
	return m.amount.FloatString(decimalPlaces)
}

// MinorUnits returns the amount as an integer count of minor units (cents),
// the preferred storage format for the ledger's decimal column.
func (m Money) MinorUnits() int64 {
	scaled := new(big.Rat).Mul(m.amount, big.NewRat(minorUnitsPerWhole, 1))
	return scaled.Num().Int64() / scaled.Denom().Int64()
}

// Add returns a new Money with the sum of two amounts. Immutable: never
// modifies the receiver. Cannot add different currencies.
func (m Money) Add(other Money) (Money, error) {
	if !m.currency.Equals(other.currency) {
		return Money{}, ErrCurrencyMismatch
	}
	sum := new(big.Rat).Add(m.amount, other.amount)
	return Money{amount: sum, currency: m.currency}, nil
}

// Subtract returns a new Money with the difference. Returns
// ErrInsufficientAmount if the result would be negative.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.currency.Equals(other.currency) {
		return Money{}, ErrCurrencyMismatch
	}
	diff := new(big.Rat).Sub(m.amount, other.amount)
	if diff.Sign() < 0 {
		return Money{}, ErrInsufficientAmount
	}
	return Money{amount: diff, currency: m.currency}, nil
}

// SubtractAllowingNegative returns m - other, permitting a negative result.
// Only the ledger engine uses this, for clearing-wallet postings: the
// clearing side of a single-sided credit legitimately runs a negative book
// balance. Customer wallets go through Subtract, which refuses to go below
// zero.
func (m Money) SubtractAllowingNegative(other Money) (Money, error) {
	if !m.currency.Equals(other.currency) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: new(big.Rat).Sub(m.amount, other.amount), currency: m.currency}, nil
}

// IsZero returns true if the amount is zero.
func (m Money) IsZero() bool {
	return m.amount.Sign() == 0
}

// IsPositive returns true if the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.Sign() > 0
}

// GreaterThan checks if this money is greater than another.
func (m Money) GreaterThan(other Money) (bool, error) {
	if !m.currency.Equals(other.currency) {
		return false, ErrCurrencyMismatch
	}
	return m.amount.Cmp(other.amount) > 0, nil
}

// GreaterThanOrEqual checks if this money is >= another.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if !m.currency.Equals(other.currency) {
		return false, ErrCurrencyMismatch
	}
	return m.amount.Cmp(other.amount) >= 0, nil
}

// LessThan checks if this money is less than another.
func (m Money) LessThan(other Money) (bool, error) {
	if !m.currency.Equals(other.currency) {
		return false, ErrCurrencyMismatch
	}
	return m.amount.Cmp(other.amount) < 0, nil
}

// Equals checks if two money values are equal (amount and currency).
func (m Money) Equals(other Money) bool {
	return m.currency.Equals(other.currency) && m.amount.Cmp(other.amount) == 0
}
