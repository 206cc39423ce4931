// Package fees holds the service fee schedule charged on salary advances.
package fees

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var DefaultRate = decimal.RequireFromString("0.065")

type Schedule struct {
	Rate decimal.Decimal
}

func NewSchedule(rate decimal.Decimal) Schedule {
	return Schedule{Rate: rate}
}

// ParseSchedule reads the rate as written in config, e.g. "0.065".
func ParseSchedule(rate string) (Schedule, error) {
	if rate == "" {
		return Schedule{Rate: DefaultRate}, nil
	}
	d, err := decimal.NewFromString(rate)
	if err != nil {
		return Schedule{}, fmt.Errorf("parse service fee rate %q: %w", rate, err)
	}
	if d.IsNegative() || d.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return Schedule{}, fmt.Errorf("service fee rate %s out of range", rate)
	}
	return Schedule{Rate: d}, nil
}

// Fee returns round(amount * rate), rounding half away from zero. GNF has no
// minor unit so the result is a whole amount.
func (s Schedule) Fee(amount int64) int64 {
	return decimal.NewFromInt(amount).Mul(s.Rate).Round(0).IntPart()
}

// NetDisbursement is the amount actually sent to the employee.
func (s Schedule) NetDisbursement(amount int64) int64 {
	return amount - s.Fee(amount)
}
