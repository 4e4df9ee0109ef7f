package domain

import "strings"

// Country is an entry of the FTS location catalog.
type Country struct {
	ID   string
	Name string
	ISO3 string
}

// Table is a finished output table. Keys are the internal column names,
// Columns the display headers and Tags the HXL row written under them.
type Table struct {
	Name        string
	Description string
	Keys        []string
	Columns     []string
	Tags        []string
	Rows        [][]string
}

// Column returns the values of the column with the given key.
func (t Table) Column(key string) []string {
	idx := -1
	for i, k := range t.Keys {
		if k == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil
	}
	values := make([]string, 0, len(t.Rows))
	for _, row := range t.Rows {
		values = append(values, row[idx])
	}
	return values
}

// Records returns the header, the tag row and the data rows.
func (t Table) Records() [][]string {
	records := make([][]string, 0, len(t.Rows)+2)
	records = append(records, t.Columns, t.Tags)
	records = append(records, t.Rows...)
	return records
}

// Dataset describes the catalog entry the tables of a country belong to.
type Dataset struct {
	Name       string
	Title      string
	Tags       []string
	SummaryURL string
}

// CountryResult is the output of one country run.
type CountryResult struct {
	Country     Country
	Dataset     Dataset
	Tables      []Table
	Recommended string
}

// Table looks up a finished table by file name.
func (r *CountryResult) Table(name string) (Table, bool) {
	for _, t := range r.Tables {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return Table{}, false
}
