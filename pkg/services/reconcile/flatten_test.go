package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

func TestFlatten_SourceObjects(t *testing.T) {
	// Given
	objects := []domain.LinkedObject{
		domain.OrganizationObject{Name: "Donor Gov", OrganizationTypes: []string{"Government", "Bilateral"}},
		domain.LocationObject{Name: "Nigeria"},
		domain.LocationObject{Name: "Cameroon"},
		domain.UsageYearObject{Year: "2025"},
		domain.UsageYearObject{Year: "2023"},
		domain.UsageYearObject{Year: "2024"},
	}

	// When
	flat, collapses := Flatten(objects, domain.RoleSource, testResolver())

	// Then
	assert.Empty(t, collapses)
	assert.Equal(t, map[string]string{
		"srcOrganization":      "Donor Gov",
		"srcOrganizationTypes": "Bilateral,Government",
		"srcLocations":         "CMR,NGA",
		"srcUsageYearStart":    "2023",
		"srcUsageYearEnd":      "2025",
	}, flat)
}

func TestFlatten_DestinationObjects(t *testing.T) {
	objects := []domain.LinkedObject{
		domain.PlanObject{ID: "1200", Name: "Chad HRP 2024"},
		domain.ProjectObject{Name: "Water trucking", Code: "TCD-24/WS/1"},
		domain.GlobalClusterObject{Name: "WASH"},
		domain.GlobalClusterObject{Name: "Health"},
		domain.GlobalClusterObject{Name: "WASH"},
		domain.LocationObject{Name: "Sahel"},
	}

	flat, collapses := Flatten(objects, domain.RoleDestination, testResolver())

	assert.Empty(t, collapses)
	assert.Equal(t, "1200", flat["destPlanId"])
	assert.Equal(t, "Chad HRP 2024", flat["destPlan"])
	assert.Equal(t, "Water trucking", flat["destProject"])
	assert.Equal(t, "TCD-24/WS/1", flat["destProjectCode"])
	assert.Equal(t, "Health,WASH", flat["destGlobalClusters"])
	assert.Equal(t, "Sahel", flat["destLocations"], "unresolved names are kept verbatim")
}

func TestFlatten_MultipleDistinctValuesCollapse(t *testing.T) {
	objects := []domain.LinkedObject{
		domain.OrganizationObject{Name: "Agency A"},
		domain.OrganizationObject{Name: "Agency B"},
		domain.PlanObject{ID: "1", Name: "Plan"},
		domain.PlanObject{ID: "1", Name: "Plan"},
	}

	flat, collapses := Flatten(objects, domain.RoleDestination, testResolver())

	assert.Equal(t, Multiple, flat["destOrganization"])
	assert.Equal(t, "1", flat["destPlanId"])
	assert.Equal(t, "Plan", flat["destPlan"])
	require.Len(t, collapses, 1)
	assert.Equal(t, "destOrganization", collapses[0].Field)
	assert.Equal(t, []string{"Agency A", "Agency B"}, collapses[0].Values)
}

func TestFlatten_UnknownTypes(t *testing.T) {
	objects := []domain.LinkedObject{
		domain.UnknownObject{Type: "Sector", Attrs: []domain.Attribute{
			{Key: "name", Values: []string{"Shelter"}},
			{Key: "subsector", Values: []string{"NFI"}},
			{Key: "code", Values: nil},
		}},
	}

	flat, collapses := Flatten(objects, domain.RoleDestination, nil)

	assert.Empty(t, collapses)
	assert.Equal(t, map[string]string{
		"destSector":          "Shelter",
		"destSectorSubsector": "NFI",
	}, flat)
}

func TestFlatten_IsIdempotent(t *testing.T) {
	objects := []domain.LinkedObject{
		domain.OrganizationObject{Name: "Agency A"},
		domain.OrganizationObject{Name: "Agency B"},
		domain.LocationObject{Name: "Chad"},
		domain.UsageYearObject{Year: "2024"},
	}
	resolver := testResolver()

	first, firstCollapses := Flatten(objects, domain.RoleSource, resolver)
	second, secondCollapses := Flatten(objects, domain.RoleSource, resolver)

	assert.Equal(t, first, second)
	assert.Equal(t, firstCollapses, secondCollapses)
}

func TestFlatten_Empty(t *testing.T) {
	flat, collapses := Flatten(nil, domain.RoleSource, nil)
	assert.Empty(t, flat)
	assert.Empty(t, collapses)
}
