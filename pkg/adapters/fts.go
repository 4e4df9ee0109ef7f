package adapters

import (
	"github.com/shopspring/decimal"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/models/store"
)

func MapStoreLocationToDomainCountry(l store.Location) domain.Country {
	return domain.Country{
		ID:   l.ID.String(),
		Name: l.Name,
		ISO3: l.ISO3,
	}
}

func MapStoreAmountToDomain(a store.Amount) decimal.NullDecimal {
	return decimal.NullDecimal(a)
}

func MapStorePlanToDomain(p store.Plan, countryCode string) domain.Plan {
	plan := domain.Plan{
		ID:                  p.ID.String(),
		Code:                p.Code,
		Name:                p.Name,
		CountryCode:         countryCode,
		StartDate:           p.StartDate,
		EndDate:             p.EndDate,
		RevisedRequirements: MapStoreAmountToDomain(p.RevisedRequirements),
	}
	for _, y := range p.Years {
		plan.Years = append(plan.Years, y.Year.String())
	}
	for _, l := range p.Locations {
		level := domain.UnknownAdminLevel
		if l.AdminLevel != nil {
			level = *l.AdminLevel
		}
		plan.Locations = append(plan.Locations, domain.Location{
			ID:         l.ID.String(),
			Name:       l.Name,
			ISO3:       l.ISO3,
			AdminLevel: level,
		})
	}
	return plan
}

func MapStoreFundingObjectToDomainTotal(o store.FundingObject) domain.PlanFundingTotal {
	return domain.PlanFundingTotal{
		PlanID:            o.ID.String(),
		Name:              o.Name,
		TotalFunding:      MapStoreAmountToDomain(o.TotalFunding),
		OnBoundaryFunding: MapStoreAmountToDomain(o.OnBoundaryFunding),
	}
}

func MapStoreFundingObjectToDomainCluster(planID string, o store.FundingObject) domain.ClusterBreakdown {
	return domain.ClusterBreakdown{
		PlanID:  planID,
		Code:    o.ID.String(),
		Name:    o.Name,
		Funding: MapStoreAmountToDomain(o.TotalFunding),
	}
}

func MapStoreRequirementObjectToDomainCluster(planID string, o store.RequirementObject) domain.ClusterBreakdown {
	return domain.ClusterBreakdown{
		PlanID:       planID,
		Code:         o.ID.String(),
		Name:         o.Name,
		Requirements: MapStoreAmountToDomain(o.RevisedRequirements),
	}
}

func MapStoreFlowToDomain(f store.Flow) domain.FundingFlow {
	flow := domain.FundingFlow{
		ID:                f.ID.String(),
		Date:              f.Date,
		AmountUSD:         f.AmountUSD.String(),
		OriginalAmount:    f.OriginalAmount.String(),
		OriginalCurrency:  f.OriginalCurrency,
		ExchangeRate:      f.ExchangeRate.String(),
		BudgetYear:        f.BudgetYear.String(),
		ContributionType:  f.ContributionType,
		FlowType:          f.FlowType,
		Method:            f.Method,
		Boundary:          f.Boundary,
		Status:            f.Status,
		Keywords:          f.Keywords,
		Description:       f.Description,
		RefCode:           f.RefCode.String(),
		FirstReportedDate: f.FirstReportedDate,
		DecisionDate:      f.DecisionDate,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
	for _, o := range f.SourceObjects {
		flow.SourceObjects = append(flow.SourceObjects, MapStoreLinkedObjectToDomain(o))
	}
	for _, o := range f.DestinationObjects {
		flow.DestinationObjects = append(flow.DestinationObjects, MapStoreLinkedObjectToDomain(o))
	}
	return flow
}

func MapStoreLinkedObjectToDomain(o store.LinkedObject) domain.LinkedObject {
	name := o.Name.String()
	switch domain.ObjectType(o.Type) {
	case domain.ObjectOrganization:
		return domain.OrganizationObject{Name: name, OrganizationTypes: o.OrganizationTypes}
	case domain.ObjectLocation:
		return domain.LocationObject{Name: name}
	case domain.ObjectUsageYear:
		return domain.UsageYearObject{Year: name}
	case domain.ObjectPlan:
		return domain.PlanObject{ID: o.ID.String(), Name: name}
	case domain.ObjectProject:
		return domain.ProjectObject{Name: name, Code: o.Code.String()}
	case domain.ObjectGlobalCluster:
		return domain.GlobalClusterObject{Name: name}
	case domain.ObjectCluster:
		return domain.ClusterObject{Name: name}
	case domain.ObjectEmergency:
		return domain.EmergencyObject{Name: name}
	}

	attrs := []domain.Attribute{
		{Key: "name", Values: nonEmpty(name)},
		{Key: "code", Values: nonEmpty(o.Code.String())},
		{Key: "organizationTypes", Values: o.OrganizationTypes},
	}
	for _, key := range o.ExtraKeys() {
		attrs = append(attrs, domain.Attribute{Key: key, Values: o.Extra[key]})
	}
	return domain.UnknownObject{Type: domain.ObjectType(o.Type), Attrs: attrs}
}

func nonEmpty(v string) []string {
	if v == "" {
		return nil
	}
	return []string{v}
}
