package model

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a money value sent to the backend as a bare JSON number.
type Amount struct {
	decimal.Decimal
}

func NewAmount(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.IsPositive() {
		return Amount{}, fmt.Errorf("amount must be positive, got %s", s)
	}
	return Amount{d}, nil
}

func MustAmount(s string) Amount {
	a, err := NewAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.Decimal.UnmarshalJSON(b)
}

// Tag formats the amount for display, e.g. "Ksh 100".
func (a Amount) Tag(currency string) string {
	return currency + " " + a.Decimal.String()
}
