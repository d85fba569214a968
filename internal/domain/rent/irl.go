package rent

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RentRevision is the yearly revision of a rent against the IRL
// (indice de reference des loyers).
type RentRevision struct {
	CurrentRent decimal.Decimal `json:"currentRent"`
	NewRent     decimal.Decimal `json:"newRent"`
	Increase    decimal.Decimal `json:"increase"`
	// RatePercent is the index variation in percent, 2 decimals.
	RatePercent decimal.Decimal `json:"ratePercent"`
}

// ReviseRent applies rent * newIndex / oldIndex, rounded to cents.
func ReviseRent(rent, oldIndex, newIndex decimal.Decimal) (RentRevision, error) {
	if !rent.IsPositive() {
		return RentRevision{}, fmt.Errorf("%w: rent must be positive", ErrInvalidInput)
	}
	if !oldIndex.IsPositive() || !newIndex.IsPositive() {
		return RentRevision{}, fmt.Errorf("%w: indexes must be positive", ErrInvalidInput)
	}
	current := rent.Round(2)
	revised := rent.Mul(newIndex).Div(oldIndex).Round(2)
	rate := newIndex.Sub(oldIndex).Div(oldIndex).Mul(decimal.NewFromInt(100)).Round(2)
	return RentRevision{
		CurrentRent: current,
		NewRent:     revised,
		Increase:    revised.Sub(current),
		RatePercent: rate,
	}, nil
}
