// Package billing prices document line items and derives invoice and purchase totals.
//
// All arithmetic uses decimal values. Percentages are kept at the six places the
// money columns store, and only the final document total is rounded to two places.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrConsistency  = errors.New("stored totals do not match recomputed totals")
)

var hundred = decimal.NewFromInt(100)

// MoneyPlaces is the scale of every stored money column.
const MoneyPlaces = 6

// LineAmount is the priced result of one line item.
type LineAmount struct {
	Quantity   int             `json:"quantity"`
	Rate       decimal.Decimal `json:"rate"`
	TaxPercent decimal.Decimal `json:"taxPercent"`
	Amount     decimal.Decimal `json:"amount"`
	TaxAmount  decimal.Decimal `json:"taxAmount"`
}

// PriceItem computes amount = quantity*rate and taxAmount = amount*taxPercent/100.
func PriceItem(quantity int, rate, taxPercent decimal.Decimal) (LineAmount, error) {
	if quantity <= 0 {
		return LineAmount{}, fmt.Errorf("%w: quantity must be greater than zero", ErrInvalidInput)
	}
	if rate.IsNegative() {
		return LineAmount{}, fmt.Errorf("%w: rate must not be negative", ErrInvalidInput)
	}
	if taxPercent.IsNegative() {
		return LineAmount{}, fmt.Errorf("%w: tax percent must not be negative", ErrInvalidInput)
	}

	amount := rate.Mul(decimal.NewFromInt(int64(quantity)))
	return LineAmount{
		Quantity:   quantity,
		Rate:       rate,
		TaxPercent: taxPercent,
		Amount:     amount,
		TaxAmount:  percentOf(amount, taxPercent),
	}, nil
}

// Round2 rounds half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf rounds to MoneyPlaces so a stored amount recomputes to the same value.
func percentOf(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(hundred).Round(MoneyPlaces)
}

func sumAmounts(items []LineAmount) (amount, tax decimal.Decimal) {
	amount, tax = decimal.Zero, decimal.Zero
	for _, it := range items {
		amount = amount.Add(it.Amount)
		tax = tax.Add(it.TaxAmount)
	}
	return amount, tax
}
