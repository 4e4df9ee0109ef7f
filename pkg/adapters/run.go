package adapters

import (
	"github.com/de-tools/funding-atlas/pkg/models/api"
	"github.com/de-tools/funding-atlas/pkg/models/domain"
	"github.com/de-tools/funding-atlas/pkg/models/store"
)

func MapStoreRunToDomain(r *store.Run) *domain.Run {
	if r == nil {
		return nil
	}

	run := &domain.Run{
		ID:         r.ID,
		Country:    r.Country,
		Year:       r.Year,
		Status:     domain.RunStatus(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
	}
	if r.Recommended != nil {
		run.Recommended = *r.Recommended
	}
	for _, t := range r.Tables {
		run.Tables = append(run.Tables, domain.RunTable{Name: t.Name, Rows: t.Rows})
	}
	return run
}

func MapDomainRunToStore(r *domain.Run) *store.Run {
	run := &store.Run{
		ID:         r.ID,
		Country:    r.Country,
		Year:       r.Year,
		Status:     string(r.Status),
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
		Error:      r.Error,
	}
	if r.Recommended != "" {
		recommended := r.Recommended
		run.Recommended = &recommended
	}
	for _, t := range r.Tables {
		run.Tables = append(run.Tables, store.RunTable{Name: t.Name, Rows: t.Rows})
	}
	return run
}

func MapRunDomainToApi(r domain.Run) api.Run {
	res := api.Run{
		ID:          r.ID,
		Country:     r.Country,
		Year:        r.Year,
		Status:      string(r.Status),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
		Recommended: r.Recommended,
		Tables:      make([]api.RunTable, 0, len(r.Tables)),
		Error:       r.Error,
	}
	for _, t := range r.Tables {
		res.Tables = append(res.Tables, api.RunTable{Name: t.Name, Rows: t.Rows})
	}
	return res
}
