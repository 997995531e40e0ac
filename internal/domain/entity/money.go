package entity

import (
	"fmt"
	"regexp"
	"strings"

	errs "github.com/amirhossein-jamali/loan-ledger/internal/domain/error"
	"github.com/shopspring/decimal"
)

// MoneyScale defines the number of decimal places kept for balances and amounts
const MoneyScale = 2

// RateScale defines the number of decimal places kept for interest rates (percent)
const RateScale = 4

var (
	amountPattern = regexp.MustCompile(`^\d+(\.\d{1,2})?$`)
	ratePattern   = regexp.MustCompile(`^\d+(\.\d{1,4})?$`)
	hundred       = decimal.NewFromInt(100)
)

// ParseAmount parses a non-negative money amount such as "10", "10.5" or "10.50".
// Signs, exponents, separators and more than two decimal places are rejected.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errs.NewValidationError("amount", raw, "empty value", errs.ErrInvalidAmount)
	}
	if !amountPattern.MatchString(raw) {
		return decimal.Zero, errs.NewValidationError("amount", raw,
			fmt.Sprintf("expected a non-negative number with at most %d decimal places", MoneyScale), errs.ErrInvalidAmount)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.NewValidationError("amount", raw, err.Error(), errs.ErrInvalidAmount)
	}
	return value, nil
}

// ParsePositiveAmount parses an amount that must be strictly greater than zero
func ParsePositiveAmount(raw string) (decimal.Decimal, error) {
	value, err := ParseAmount(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if err := ValidatePositiveAmount(value); err != nil {
		return decimal.Zero, err
	}
	return value, nil
}

// ParseInterestRate parses a non-negative percentage with at most four decimal places
func ParseInterestRate(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if !ratePattern.MatchString(raw) {
		return decimal.Zero, errs.NewValidationError("interest_rate", raw,
			fmt.Sprintf("expected a non-negative number with at most %d decimal places", RateScale), errs.ErrInvalidInterestRate)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errs.NewValidationError("interest_rate", raw, err.Error(), errs.ErrInvalidInterestRate)
	}
	return value, nil
}

// ValidatePositiveAmount checks amount > 0 and that it fits the money scale
func ValidatePositiveAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return errs.NewValidationError("amount", amount.String(), "must be greater than zero", errs.ErrInvalidAmount)
	}
	if !amount.Equal(amount.Round(MoneyScale)) {
		return errs.NewValidationError("amount", amount.String(),
			fmt.Sprintf("at most %d decimal places allowed", MoneyScale), errs.ErrInvalidAmount)
	}
	return nil
}

// ValidateInterestRate checks rate >= 0 and that it fits the rate scale
func ValidateInterestRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return errs.NewValidationError("interest_rate", rate.String(), "must not be negative", errs.ErrInvalidInterestRate)
	}
	if !rate.Equal(rate.Round(RateScale)) {
		return errs.NewValidationError("interest_rate", rate.String(),
			fmt.Sprintf("at most %d decimal places allowed", RateScale), errs.ErrInvalidInterestRate)
	}
	return nil
}

// ComputeInterest returns amount * rate / 100 rounded half away from zero to cents
func ComputeInterest(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred).Round(MoneyScale)
}

// FormatAmount renders a money value with exactly two decimal places
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyScale)
}

// FormatRate renders an interest rate without trailing zeros
func FormatRate(rate decimal.Decimal) string {
	return rate.String()
}
