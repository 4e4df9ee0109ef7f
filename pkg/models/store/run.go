package store

import "time"

type Run struct {
	ID          string
	Country     string
	Year        int
	Status      string
	StartedAt   time.Time
	FinishedAt  *time.Time
	Recommended *string
	Error       *string
	Tables      []RunTable
}

type RunTable struct {
	Name string
	Rows int
}
