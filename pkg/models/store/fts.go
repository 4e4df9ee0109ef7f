package store

import (
	"encoding/json"
	"sort"
)

// Envelope is the outer shape of every FTS API response.
type Envelope[T any] struct {
	Status int `json:"status"`
	Data   T   `json:"data"`
}

type Location struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
	ISO3 string `json:"iso3"`
}

type FlowSearch struct {
	Flows []Flow `json:"flows"`
}

type Flow struct {
	ID                 ID             `json:"id"`
	AmountUSD          Scalar         `json:"amountUSD"`
	Boundary           string         `json:"boundary"`
	BudgetYear         Scalar         `json:"budgetYear"`
	ContributionType   string         `json:"contributionType"`
	CreatedAt          string         `json:"createdAt"`
	Date               string         `json:"date"`
	DecisionDate       string         `json:"decisionDate"`
	Description        string         `json:"description"`
	ExchangeRate       Scalar         `json:"exchangeRate"`
	FirstReportedDate  string         `json:"firstReportedDate"`
	FlowType           string         `json:"flowType"`
	Keywords           []string       `json:"keywords"`
	Method             string         `json:"method"`
	OriginalAmount     Scalar         `json:"originalAmount"`
	OriginalCurrency   string         `json:"originalCurrency"`
	RefCode            Scalar         `json:"refCode"`
	Status             string         `json:"status"`
	UpdatedAt          string         `json:"updatedAt"`
	SourceObjects      []LinkedObject `json:"sourceObjects"`
	DestinationObjects []LinkedObject `json:"destinationObjects"`
}

// LinkedObject is the raw source/destination object of a flow. Keys we do
// not model explicitly end up in Extra.
type LinkedObject struct {
	Type              string              `json:"type"`
	ID                ID                  `json:"id"`
	Name              Scalar              `json:"name"`
	Behavior          string              `json:"behavior"`
	Code              Scalar              `json:"code"`
	OrganizationTypes []string            `json:"organizationTypes"`
	Extra             map[string][]string `json:"-"`
}

var linkedObjectKeys = map[string]struct{}{
	"type":              {},
	"id":                {},
	"name":              {},
	"behavior":          {},
	"code":              {},
	"organizationTypes": {},
}

func (o *LinkedObject) UnmarshalJSON(data []byte) error {
	type plain LinkedObject
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for key, value := range raw {
		if _, known := linkedObjectKeys[key]; known {
			continue
		}
		values := rawValues(value)
		if len(values) == 0 {
			continue
		}
		if p.Extra == nil {
			p.Extra = make(map[string][]string)
		}
		p.Extra[key] = values
	}

	*o = LinkedObject(p)
	return nil
}

// ExtraKeys returns the Extra keys in a stable order.
func (o LinkedObject) ExtraKeys() []string {
	keys := make([]string, 0, len(o.Extra))
	for k := range o.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func rawValues(raw json.RawMessage) []string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		var values []string
		for _, item := range list {
			if s, err := scalarText(item); err == nil && s != "" {
				values = append(values, s)
			}
		}
		return values
	}
	s, err := scalarText(raw)
	if err != nil || s == "" {
		return nil
	}
	return []string{s}
}

type PlanYear struct {
	Year Scalar `json:"year"`
}

type PlanLocation struct {
	ID         ID     `json:"id"`
	Name       string `json:"name"`
	ISO3       string `json:"iso3"`
	AdminLevel *int   `json:"adminLevel"`
}

// Plan is returned by plan/country/{iso3} and plan/id/{id}. A lookup of an
// unknown plan comes back with only Message set.
type Plan struct {
	ID                  ID             `json:"id"`
	Code                string         `json:"code"`
	Name                string         `json:"name"`
	StartDate           string         `json:"startDate"`
	EndDate             string         `json:"endDate"`
	Years               []PlanYear     `json:"years"`
	RevisedRequirements Amount         `json:"revisedRequirements"`
	Locations           []PlanLocation `json:"locations"`
	Message             string         `json:"message"`
}

// GroupedFlows is the payload of fts/flow queries with a groupby parameter.
type GroupedFlows struct {
	Report3      Report3        `json:"report3"`
	Requirements RequirementSet `json:"requirements"`
}

type Report3 struct {
	FundingTotals FundingTotals `json:"fundingTotals"`
}

type FundingTotals struct {
	Objects []FundingTotalsObject `json:"objects"`
}

type FundingTotalsObject struct {
	ObjectsBreakdown []FundingObject `json:"objectsBreakdown"`
	TotalBreakdown   TotalBreakdown  `json:"totalBreakdown"`
}

type TotalBreakdown struct {
	SharedFunding Amount `json:"sharedFunding"`
}

type FundingObject struct {
	ID                ID     `json:"id"`
	Name              string `json:"name"`
	TotalFunding      Amount `json:"totalFunding"`
	OnBoundaryFunding Amount `json:"onBoundaryFunding"`
}

type RequirementSet struct {
	Objects []RequirementObject `json:"objects"`
}

type RequirementObject struct {
	ID                  ID     `json:"id"`
	Name                string `json:"name"`
	RevisedRequirements Amount `json:"revisedRequirements"`
}

// Breakdown returns the first funding totals object, if any.
func (g *GroupedFlows) Breakdown() (*FundingTotalsObject, bool) {
	if g == nil || len(g.Report3.FundingTotals.Objects) == 0 {
		return nil, false
	}
	return &g.Report3.FundingTotals.Objects[0], true
}
