package rent

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidInput = errors.New("invalid input")

// ChargeInput describes one yearly regularization of recoverable charges.
// Zero occupancy bounds default to the period bounds.
type ChargeInput struct {
	PeriodStart    time.Time       `json:"periodStart"`
	PeriodEnd      time.Time       `json:"periodEnd"`
	OccupancyStart time.Time       `json:"occupancyStart"`
	OccupancyEnd   time.Time       `json:"occupancyEnd"`
	ActualCharges  decimal.Decimal `json:"actualCharges"`
	ProvisionsPaid decimal.Decimal `json:"provisionsPaid"`
}

// Direction of the regularization balance
type Direction string

const (
	DirectionDue     Direction = "due"
	DirectionRefund  Direction = "refund"
	DirectionSettled Direction = "settled"
)

type ChargeResult struct {
	PeriodDays     int             `json:"periodDays"`
	OccupiedDays   int             `json:"occupiedDays"`
	TenantShare    decimal.Decimal `json:"tenantShare"`
	ProvisionsPaid decimal.Decimal `json:"provisionsPaid"`
	Balance        decimal.Decimal `json:"balance"`
	Direction      Direction       `json:"direction"`
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// inclusive day count
func daysBetween(from, to time.Time) int {
	return int(day(to).Sub(day(from)).Hours()/24) + 1
}

// RegularizeCharges prorates the actual charges over the days the tenant
// occupied the unit and compares them with the provisions already paid.
// A positive balance is owed by the tenant, a negative one is refunded.
func RegularizeCharges(in ChargeInput) (ChargeResult, error) {
	if in.PeriodStart.IsZero() || in.PeriodEnd.IsZero() {
		return ChargeResult{}, fmt.Errorf("%w: period bounds are required", ErrInvalidInput)
	}
	if day(in.PeriodEnd).Before(day(in.PeriodStart)) {
		return ChargeResult{}, fmt.Errorf("%w: period ends before it starts", ErrInvalidInput)
	}
	if in.ActualCharges.IsNegative() || in.ProvisionsPaid.IsNegative() {
		return ChargeResult{}, fmt.Errorf("%w: amounts must not be negative", ErrInvalidInput)
	}

	start, end := in.OccupancyStart, in.OccupancyEnd
	if start.IsZero() || day(start).Before(day(in.PeriodStart)) {
		start = in.PeriodStart
	}
	if end.IsZero() || day(end).After(day(in.PeriodEnd)) {
		end = in.PeriodEnd
	}

	periodDays := daysBetween(in.PeriodStart, in.PeriodEnd)
	occupied := 0
	if !day(end).Before(day(start)) {
		occupied = daysBetween(start, end)
	}

	share := in.ActualCharges.
		Mul(decimal.NewFromInt(int64(occupied))).
		Div(decimal.NewFromInt(int64(periodDays))).
		Round(2)
	provisions := in.ProvisionsPaid.Round(2)
	balance := share.Sub(provisions)

	dir := DirectionSettled
	switch balance.Sign() {
	case 1:
		dir = DirectionDue
	case -1:
		dir = DirectionRefund
	}

	return ChargeResult{
		PeriodDays:     periodDays,
		OccupiedDays:   occupied,
		TenantShare:    share,
		ProvisionsPaid: provisions,
		Balance:        balance,
		Direction:      dir,
	}, nil
}
