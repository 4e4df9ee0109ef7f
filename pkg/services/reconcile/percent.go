package reconcile

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// PercentFunded is floor(funding / requirements * 100). It is blank unless
// both figures are known and requirements is not zero.
func PercentFunded(funding, requirements decimal.NullDecimal) string {
	if !funding.Valid || !requirements.Valid || requirements.Decimal.IsZero() {
		return ""
	}
	return floorPercent(funding.Decimal, requirements.Decimal)
}

// PercentFundedOrZero treats unknown funding as zero when requirements are known.
func PercentFundedOrZero(funding, requirements decimal.NullDecimal) string {
	if !requirements.Valid || requirements.Decimal.IsZero() {
		return ""
	}
	if !funding.Valid {
		return "0"
	}
	return floorPercent(funding.Decimal, requirements.Decimal)
}

func floorPercent(funding, requirements decimal.Decimal) string {
	q, r := funding.Mul(hundred).QuoRem(requirements, 0)
	if !r.IsZero() && r.Sign() != requirements.Sign() {
		q = q.Sub(decimal.NewFromInt(1))
	}
	return q.String()
}

func amountText(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.String()
}
