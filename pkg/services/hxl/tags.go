// Package hxl holds the fixed HXL hashtag dictionaries and column sets of
// the published tables.
package hxl

// FundingTags tags the columns of the transaction detail table.
var FundingTags = map[string]string{
	"amountUSD":             "#value+funding+total+usd",
	"boundary":              "#financial+direction",
	"budgetYear":            "#date+year+budget",
	"contributionType":      "#financial+contribution+type",
	"createdAt":             "#date+created",
	"date":                  "#date",
	"decisionDate":          "#date+decision",
	"description":           "#description+notes",
	"exchangeRate":          "#financial+fx",
	"firstReportedDate":     "#date+reported",
	"flowType":              "#financial+contribution+type",
	"id":                    "#activity+id+fts_internal",
	"keywords":              "#description+keywords",
	"method":                "#financial+method",
	"originalAmount":        "#value+funding+total",
	"originalCurrency":      "#value+funding+total+currency",
	"refCode":               "#activity+code",
	"status":                "#status+text",
	"updatedAt":             "#date+updated",
	"srcOrganization":       "#org+name+funder",
	"srcOrganizationTypes":  "#org+type+funder+list",
	"srcLocations":          "#country+iso3+funder+list",
	"srcUsageYearStart":     "#date+year+start+funder",
	"srcUsageYearEnd":       "#date+year+end+funder",
	"destPlan":              "#activity+appeal+name+impl",
	"destPlanCode":          "#activity+appeal+id+external+impl",
	"destPlanId":            "#activity+appeal+id+fts_internal+impl",
	"destOrganization":      "#org+name+impl",
	"destOrganizationTypes": "#org+type+impl+list",
	"destGlobalClusters":    "#sector+cluster+name+impl+list",
	"destLocations":         "#country+iso3+impl+list",
	"destProject":           "#activity+project+name+impl",
	"destProjectCode":       "#activity+project+code+impl",
	"destUsageYearStart":    "#date+year+start+impl",
	"destUsageYearEnd":      "#date+year+end+impl",
}

// Tags tags the country and cluster tables.
var Tags = map[string]string{
	"id":                  "#activity+appeal+id+fts_internal",
	"countryCode":         "#country+code",
	"name":                "#activity+appeal+name",
	"code":                "#activity+appeal+id+external",
	"revisedRequirements": "#value+funding+required+usd",
	"totalFunding":        "#value+funding+total+usd",
	"startDate":           "#date+start",
	"endDate":             "#date+end",
	"year":                "#date+year",
	"percentFunded":       "#value+funding+pct",
	"clusterCode":         "#sector+cluster+code",
	"clusterName":         "#sector+cluster+name",
}

// Renames maps internal column names to published headers.
var Renames = map[string]string{
	"totalFunding":        "Funding",
	"revisedRequirements": "Requirements",
	"percentFunded":       "Percent Funded",
	"clusterName":         "Cluster",
}

var FundingColumns = []string{
	"date", "budgetYear", "description", "amountUSD", "srcOrganization",
	"srcOrganizationTypes", "srcLocations", "srcUsageYearStart", "srcUsageYearEnd",
	"destPlan", "destPlanCode", "destPlanId", "destOrganization", "destOrganizationTypes",
	"destGlobalClusters", "destLocations", "destProject", "destProjectCode",
	"destUsageYearStart", "destUsageYearEnd", "contributionType", "flowType", "method",
	"boundary", "status", "firstReportedDate", "decisionDate", "keywords",
	"originalAmount", "originalCurrency", "exchangeRate", "id", "refCode",
	"createdAt", "updatedAt",
}

var CountryColumns = []string{
	"countryCode", "id", "name", "code", "startDate", "endDate", "year",
	"revisedRequirements", "totalFunding", "percentFunded",
}

var ClusterColumns = []string{
	"countryCode", "id", "name", "code", "startDate", "endDate", "year",
	"clusterCode", "clusterName", "revisedRequirements", "totalFunding", "percentFunded",
}

// DatasetTags are attached to every country dataset.
var DatasetTags = []string{"HXL", "cash assistance", "financial tracking service - fts", "funding"}
