package rent

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(y int, m time.Month, dd int) time.Time {
	return time.Date(y, m, dd, 0, 0, 0, 0, time.UTC)
}

func TestReviseRent(t *testing.T) {
	rev, err := ReviseRent(d("850"), d("142.06"), d("145.47"))
	require.NoError(t, err)

	assert.Equal(t, "850.00", rev.CurrentRent.StringFixed(2))
	assert.Equal(t, "870.40", rev.NewRent.StringFixed(2))
	assert.Equal(t, "20.40", rev.Increase.StringFixed(2))
	assert.Equal(t, "2.40", rev.RatePercent.StringFixed(2))
}

func TestReviseRentRejectsBadInput(t *testing.T) {
	_, err := ReviseRent(d("0"), d("142.06"), d("145.47"))
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = ReviseRent(d("850"), d("0"), d("145.47"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestRegularizeChargesPartialYear(t *testing.T) {
	res, err := RegularizeCharges(ChargeInput{
		PeriodStart:    date(2025, time.January, 1),
		PeriodEnd:      date(2025, time.December, 31),
		OccupancyStart: date(2025, time.April, 1),
		ActualCharges:  d("1200"),
		ProvisionsPaid: d("800"),
	})
	require.NoError(t, err)

	assert.Equal(t, 365, res.PeriodDays)
	assert.Equal(t, 275, res.OccupiedDays)
	assert.Equal(t, "904.11", res.TenantShare.StringFixed(2))
	assert.Equal(t, "104.11", res.Balance.StringFixed(2))
	assert.Equal(t, DirectionDue, res.Direction)
}

func TestRegularizeChargesRefund(t *testing.T) {
	res, err := RegularizeCharges(ChargeInput{
		PeriodStart:    date(2025, time.January, 1),
		PeriodEnd:      date(2025, time.December, 31),
		ActualCharges:  d("900"),
		ProvisionsPaid: d("1000"),
	})
	require.NoError(t, err)

	assert.Equal(t, 365, res.OccupiedDays)
	assert.Equal(t, "-100.00", res.Balance.StringFixed(2))
	assert.Equal(t, DirectionRefund, res.Direction)
}

func TestRegularizeChargesSettled(t *testing.T) {
	res, err := RegularizeCharges(ChargeInput{
		PeriodStart:    date(2025, time.January, 1),
		PeriodEnd:      date(2025, time.December, 31),
		ActualCharges:  d("600"),
		ProvisionsPaid: d("600"),
	})
	require.NoError(t, err)
	assert.Equal(t, DirectionSettled, res.Direction)
	assert.True(t, res.Balance.IsZero())
}

func TestRegularizeChargesOccupancyOutsidePeriod(t *testing.T) {
	res, err := RegularizeCharges(ChargeInput{
		PeriodStart:    date(2025, time.January, 1),
		PeriodEnd:      date(2025, time.December, 31),
		OccupancyStart: date(2026, time.February, 1),
		ActualCharges:  d("1200"),
		ProvisionsPaid: d("100"),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.OccupiedDays)
	assert.True(t, res.TenantShare.IsZero())
	assert.Equal(t, DirectionRefund, res.Direction)
}

func TestRegularizeChargesValidation(t *testing.T) {
	tests := []struct {
		name string
		in   ChargeInput
	}{
		{"missing period", ChargeInput{ActualCharges: d("10")}},
		{"inverted period", ChargeInput{PeriodStart: date(2025, 12, 31), PeriodEnd: date(2025, 1, 1)}},
		{"negative charges", ChargeInput{PeriodStart: date(2025, 1, 1), PeriodEnd: date(2025, 12, 31), ActualCharges: d("-1")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RegularizeCharges(tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}
