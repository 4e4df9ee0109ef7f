package reconcile

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

// Candidate is one independently sourced figure for the same total.
type Candidate struct {
	Value  decimal.NullDecimal
	Source domain.Provenance
}

// Resolution is the authoritative figure picked among candidates.
type Resolution struct {
	Value  decimal.NullDecimal
	Source domain.Provenance
	// Diverged is set when two known candidates disagree.
	Diverged bool
	// Overridden is set when the result differs from the first candidate.
	Overridden bool
}

// Resolve picks the last known candidate. Candidates are passed from the
// least to the most specific source, so the first one is the figure already
// on the row.
func Resolve(candidates ...Candidate) Resolution {
	if len(candidates) == 0 {
		return Resolution{}
	}

	chosen := -1
	var known []decimal.Decimal
	for i, c := range candidates {
		if !c.Value.Valid {
			continue
		}
		chosen = i
		known = append(known, c.Value.Decimal)
	}
	if chosen < 0 {
		return Resolution{Value: candidates[0].Value, Source: candidates[0].Source}
	}

	res := Resolution{Value: candidates[chosen].Value, Source: candidates[chosen].Source}
	for _, v := range known[1:] {
		if !v.Equal(known[0]) {
			res.Diverged = true
			break
		}
	}
	if chosen > 0 && !sameAmount(candidates[0].Value, res.Value) {
		res.Overridden = true
	}
	return res
}

func sameAmount(a, b decimal.NullDecimal) bool {
	if a.Valid != b.Valid {
		return false
	}
	return !a.Valid || a.Decimal.Equal(b.Decimal)
}
