package domain

import "time"

type RunStatus string

const (
	RunStatusPending  RunStatus = "pending"
	RunStatusFinished RunStatus = "finished"
	RunStatusSkipped  RunStatus = "skipped"
	RunStatusFailed   RunStatus = "failed"
)

type RunTable struct {
	Name string
	Rows int
}

// Run is one country processing run recorded in the ledger.
type Run struct {
	ID          string
	Country     string
	Year        int
	Status      RunStatus
	StartedAt   time.Time
	FinishedAt  *time.Time
	Recommended string
	Tables      []RunTable
	Error       *string
}
