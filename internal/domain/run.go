package domain

import "time"

// OutcomeKind describes what happened to a single trend during a run.
type OutcomeKind string

const (
	OutcomeSaved   OutcomeKind = "saved"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeError   OutcomeKind = "error"
)

// ItemOutcome is the per-trend result folded into a RunSummary.
type ItemOutcome struct {
	Trend string      `json:"trend"`
	Label Label       `json:"category,omitempty"`
	Kind  OutcomeKind `json:"outcome"`
	Error string      `json:"error,omitempty"`
}

// RunSummary aggregates one pipeline run.
type RunSummary struct {
	Processed  int           `json:"processed"`
	Relevant   int           `json:"relevant"`
	Skipped    int           `json:"skipped"`
	Errors     int           `json:"errors"`
	Saved      int           `json:"saved"`
	Records    []Record      `json:"results"`
	Outcomes   []ItemOutcome `json:"outcomes"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Stats summarises the record store for the dashboard.
type Stats struct {
	Total         int            `json:"total"`
	Pending       int            `json:"pending"`
	Approved      int            `json:"approved"`
	Rejected      int            `json:"rejected"`
	ByCategory    map[Label]int  `json:"by_category"`
	ByStatus      map[Status]int `json:"by_status"`
	RecentUpdates []Record       `json:"recent_updates"`
}
