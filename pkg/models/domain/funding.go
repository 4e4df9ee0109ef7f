package domain

// Role is the side of a flow a linked object sits on.
type Role string

const (
	RoleSource      Role = "source"
	RoleDestination Role = "destination"
)

// Direction of a flow relative to the country being processed
type Direction string

const (
	DirectionIncoming Direction = "incoming"
	DirectionInternal Direction = "internal"
	DirectionOutgoing Direction = "outgoing"
	DirectionUnknown  Direction = ""
)

// FundingFlow is a single funding transaction as reported by FTS.
type FundingFlow struct {
	ID                 string
	Date               string
	AmountUSD          string
	OriginalAmount     string
	OriginalCurrency   string
	ExchangeRate       string
	BudgetYear         string
	ContributionType   string
	FlowType           string
	Method             string
	Boundary           string
	Status             string
	Keywords           []string
	Description        string
	RefCode            string
	FirstReportedDate  string
	DecisionDate       string
	CreatedAt          string
	UpdatedAt          string
	SourceObjects      []LinkedObject
	DestinationObjects []LinkedObject
}

// Objects returns the linked objects for the given side of the flow.
func (f FundingFlow) Objects(role Role) []LinkedObject {
	if role == RoleSource {
		return f.SourceObjects
	}
	return f.DestinationObjects
}

// ClassifyDirection derives the flow direction for iso3. An explicit boundary
// flag reported by FTS wins; otherwise the source and destination country sets
// decide.
func ClassifyDirection(boundary string, iso3 string, src, dest []string) Direction {
	switch Direction(boundary) {
	case DirectionIncoming, DirectionInternal, DirectionOutgoing:
		return Direction(boundary)
	}

	inSrc := containsString(src, iso3)
	inDest := containsString(dest, iso3)
	switch {
	case inSrc && inDest:
		return DirectionInternal
	case inDest:
		return DirectionIncoming
	case inSrc:
		return DirectionOutgoing
	default:
		return DirectionUnknown
	}
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
