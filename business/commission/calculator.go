package commission

import (
	"myBetPartners/domain"
	"strings"

	"github.com/shopspring/decimal"
)

// Outcome is the result of running a house's commission configuration
// against one conversion. A zero Value means no commission record is
// written, which is a normal result, not an error.
type Outcome struct {
	Type  string
	Value decimal.Decimal
}

func (o Outcome) Earned() bool {
	return o.Value.IsPositive()
}

var revshareDivisor = decimal.NewFromInt(100)

func cpaKind(kind domain.EventKind) bool {
	return kind == domain.EventRegistration || kind == domain.EventFirstDeposit
}

func revshareKind(kind domain.EventKind) bool {
	return kind == domain.EventDeposit || kind == domain.EventRecurringDeposit || kind == domain.EventProfit
}

// Compute applies the house's commission model to one event. Hybrid houses
// apply the CPA and RevShare rules independently: a registration earns the
// fixed CPA value, a deposit earns the percentage, never both on one event.
func Compute(house domain.PartnerHouse, kind domain.EventKind, amount decimal.NullDecimal) Outcome {
	switch house.CommissionModel {
	case domain.ModelCPA:
		if cpaKind(kind) {
			return Outcome{Type: domain.CommissionCPA, Value: house.CPAValue.Round(2)}
		}
	case domain.ModelRevShare:
		if revshareKind(kind) && amount.Valid {
			return revshareOutcome(house, amount.Decimal)
		}
	case domain.ModelHybrid:
		if cpaKind(kind) {
			return Outcome{Type: domain.CommissionCPA, Value: house.CPAValue.Round(2)}
		}
		if revshareKind(kind) && amount.Valid {
			return revshareOutcome(house, amount.Decimal)
		}
	}

	return Outcome{Value: decimal.Zero}
}

func revshareOutcome(house domain.PartnerHouse, amount decimal.Decimal) Outcome {
	value := amount.Mul(house.RevSharePercent).Div(revshareDivisor).Round(2)

	return Outcome{Type: domain.CommissionRevShare, Value: value}
}

// ParseAmount parses a partner-supplied monetary string. Partners send
// whatever their systems produce; anything unparseable or negative is
// treated as absent rather than rejected, so tracking still happens.
func ParseAmount(raw string) decimal.NullDecimal {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.NullDecimal{}
	}

	value, err := decimal.NewFromString(raw)
	if err != nil || value.IsNegative() {
		return decimal.NullDecimal{}
	}

	return decimal.NullDecimal{Decimal: value, Valid: true}
}
