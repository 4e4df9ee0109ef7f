package reconcile

import (
	"fmt"
	"strings"

	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/services/hxl"
	"github.com/de-tools/funding-atlas/pkg/services/location"
	"github.com/de-tools/funding-atlas/pkg/services/tabular"
)

const testWord = "test"

// reserved cluster names that carry no sector information
var reservedClusters = map[string]struct{}{
	SharedFundingLabel:  {},
	"Multi-sector":      {},
	domain.NotSpecified: {},
}

func FundingTableName(iso3 string) string {
	return fmt.Sprintf("fts_funding_%s.csv", strings.ToLower(iso3))
}

func CountryTableName(iso3 string) string {
	return fmt.Sprintf("fts_requirements_funding_%s.csv", strings.ToLower(iso3))
}

func ClusterTableName(iso3 string) string {
	return fmt.Sprintf("fts_requirements_funding_cluster_%s.csv", strings.ToLower(iso3))
}

func FundingSpec(country domain.Country, year int) tabular.TableSpec {
	return tabular.TableSpec{
		Name:           FundingTableName(country.ISO3),
		Description:    fmt.Sprintf("FTS Detailed Funding Data for %s for %d", country.Name, year),
		Columns:        hxl.FundingColumns,
		NumericColumns: []string{"amountUSD", "budgetYear", "id"},
		DateColumns:    []string{"date", "firstReportedDate", "decisionDate", "createdAt", "updatedAt"},
		Sort:           []tabular.SortKey{{Column: "date", Descending: true}},
		Tags:           hxl.FundingTags,
		Renames:        hxl.Renames,
	}
}

func CountrySpec(country domain.Country) tabular.TableSpec {
	return tabular.TableSpec{
		Name:           CountryTableName(country.ISO3),
		Description:    fmt.Sprintf("FTS Annual Requirements and Funding Data for %s", country.Name),
		Columns:        hxl.CountryColumns,
		NumericColumns: []string{"id", "revisedRequirements", "totalFunding", "percentFunded"},
		DateColumns:    []string{"startDate", "endDate"},
		Sort:           []tabular.SortKey{{Column: "endDate", Descending: true}},
		FilterColumn:   "name",
		FilterWord:     testWord,
		Tags:           hxl.Tags,
		Renames:        hxl.Renames,
	}
}

func ClusterSpec(country domain.Country) tabular.TableSpec {
	return tabular.TableSpec{
		Name:           ClusterTableName(country.ISO3),
		Description:    fmt.Sprintf("FTS Annual Requirements and Funding Data by Cluster for %s", country.Name),
		Columns:        hxl.ClusterColumns,
		NumericColumns: []string{"id", "clusterCode", "revisedRequirements", "totalFunding", "percentFunded"},
		DateColumns:    []string{"startDate", "endDate"},
		Sort: []tabular.SortKey{
			{Column: "endDate", Descending: true},
			{Column: "name"},
			{Column: "clusterName", Last: SharedFundingKey},
		},
		FilterColumn: "name",
		FilterWord:   testWord,
		Relabel:      map[string]map[string]string{"clusterName": {SharedFundingKey: SharedFundingLabel}},
		Tags:         hxl.Tags,
		Renames:      hxl.Renames,
	}
}

// NewDataset describes the catalog entry of a country.
func NewDataset(country domain.Country, year int) domain.Dataset {
	slug := strings.ReplaceAll(location.Normalize("FTS Requirements and Funding Data for "+country.Name), " ", "-")
	return domain.Dataset{
		Name:       slug,
		Title:      fmt.Sprintf("%s - Requirements and Funding Data", country.Name),
		Tags:       hxl.DatasetTags,
		SummaryURL: fmt.Sprintf("https://fts.unocha.org/countries/%s/flows/%d", country.ID, year),
	}
}

// Recommend returns the cluster table name when it holds genuine clusters
// and none of them has a funded percentage.
func Recommend(cluster *domain.Table) string {
	if cluster == nil {
		return ""
	}
	names := cluster.Column("clusterName")
	percents := cluster.Column("percentFunded")

	genuine := 0
	for i, name := range names {
		if _, reserved := reservedClusters[name]; reserved {
			continue
		}
		genuine++
		if percents[i] != "" {
			return ""
		}
	}
	if genuine == 0 {
		return ""
	}
	return cluster.Name
}
