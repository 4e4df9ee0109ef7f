package api

import "time"

type Country struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ISO3 string `json:"iso3"`
}

type Table struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Columns     []string   `json:"columns"`
	Tags        []string   `json:"tags"`
	Rows        [][]string `json:"rows"`
}

type Dataset struct {
	Name       string   `json:"name"`
	Title      string   `json:"title"`
	Tags       []string `json:"tags"`
	SummaryURL string   `json:"summary_url"`
}

type CountryTables struct {
	Country     Country `json:"country"`
	Dataset     Dataset `json:"dataset"`
	Recommended string  `json:"recommended,omitempty"`
	Tables      []Table `json:"tables"`
}

type RunTable struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

type Run struct {
	ID          string     `json:"id"`
	Country     string     `json:"country"`
	Year        int        `json:"year"`
	Status      string     `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
	Recommended string     `json:"recommended,omitempty"`
	Tables      []RunTable `json:"tables"`
	Error       *string    `json:"error,omitempty"`
}
