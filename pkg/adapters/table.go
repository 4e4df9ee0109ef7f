package adapters

import (
	"github.com/de-tools/funding-atlas/pkg/models/api"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
)

func MapCountryDomainToApi(c domain.Country) api.Country {
	return api.Country{
		ID:   c.ID,
		Name: c.Name,
		ISO3: c.ISO3,
	}
}

func MapTableDomainToApi(t domain.Table) api.Table {
	rows := make([][]string, 0, len(t.Rows))
	rows = append(rows, t.Rows...)
	return api.Table{
		Name:        t.Name,
		Description: t.Description,
		Columns:     t.Columns,
		Tags:        t.Tags,
		Rows:        rows,
	}
}

func MapCountryResultDomainToApi(r *domain.CountryResult) api.CountryTables {
	res := api.CountryTables{
		Country: MapCountryDomainToApi(r.Country),
		Dataset: api.Dataset{
			Name:       r.Dataset.Name,
			Title:      r.Dataset.Title,
			Tags:       r.Dataset.Tags,
			SummaryURL: r.Dataset.SummaryURL,
		},
		Recommended: r.Recommended,
		Tables:      make([]api.Table, 0, len(r.Tables)),
	}
	for _, t := range r.Tables {
		res.Tables = append(res.Tables, MapTableDomainToApi(t))
	}
	return res
}
