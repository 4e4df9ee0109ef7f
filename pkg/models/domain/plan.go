package domain

import "github.com/shopspring/decimal"

// UnknownAdminLevel marks a plan location without an admin level.
const UnknownAdminLevel = -1

// NotSpecified is the name FTS uses for funding not tied to any plan.
const NotSpecified = "Not specified"

type Location struct {
	ID         string
	Name       string
	ISO3       string
	AdminLevel int
}

// Plan is a funding appeal or response plan for a country-year.
type Plan struct {
	ID                  string
	Code                string
	Name                string
	CountryCode         string
	Years               []string
	StartDate           string
	EndDate             string
	RevisedRequirements decimal.NullDecimal
	Locations           []Location
}

// Year returns the first year listed on the plan.
func (p Plan) Year() string {
	if len(p.Years) == 0 {
		return ""
	}
	return p.Years[0]
}

// PlanFundingTotal is the funding attributed to one plan (or to one location
// of a plan, depending on how the flows were grouped).
type PlanFundingTotal struct {
	PlanID            string
	Name              string
	TotalFunding      decimal.NullDecimal
	OnBoundaryFunding decimal.NullDecimal
}

// Total adds on-boundary funding into the total when both are known.
func (t PlanFundingTotal) Total() decimal.NullDecimal {
	if !t.TotalFunding.Valid {
		return t.TotalFunding
	}
	if !t.OnBoundaryFunding.Valid {
		return t.TotalFunding
	}
	return decimal.NewNullDecimal(t.TotalFunding.Decimal.Add(t.OnBoundaryFunding.Decimal))
}

// ClusterBreakdown is one cluster of a plan with its own requirement and
// funding figures. Shared is set on the synthetic shared-funding row.
type ClusterBreakdown struct {
	PlanID       string
	Code         string
	Name         string
	Requirements decimal.NullDecimal
	Funding      decimal.NullDecimal
	Shared       bool
}

// Provenance names the source an authoritative figure was taken from.
type Provenance string

const (
	ProvenanceNone            Provenance = ""
	ProvenanceDefault         Provenance = "default"
	ProvenanceRequirements    Provenance = "requirements"
	ProvenancePlanGrouped     Provenance = "plan-grouped"
	ProvenanceLocationGrouped Provenance = "location-grouped"
)

// ReconciledRow is a plan joined with its funding total at country level.
type ReconciledRow struct {
	CountryCode        string
	ID                 string
	Name               string
	Code               string
	StartDate          string
	EndDate            string
	Year               string
	Requirements       decimal.NullDecimal
	Funding            decimal.NullDecimal
	PercentFunded      string
	RequirementsSource Provenance
	FundingSource      Provenance
	// Linked is false for funding-only rows appended without a plan id to join on.
	Linked bool
}

// ClusterRow is one cluster of a plan joined back to its country-level row.
type ClusterRow struct {
	CountryCode   string
	PlanID        string
	PlanName      string
	PlanCode      string
	StartDate     string
	EndDate       string
	Year          string
	ClusterCode   string
	ClusterName   string
	Requirements  decimal.NullDecimal
	Funding       decimal.NullDecimal
	PercentFunded string
	Shared        bool
}
