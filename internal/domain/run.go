package domain

import (
	"time"

	"github.com/google/uuid"
)

// Run is the audit record of one ETL execution.
type Run struct {
	ID         uuid.UUID `db:"id" json:"run_id"`
	Source     string    `db:"source" json:"source"`
	Total      int       `db:"total" json:"total"`
	Inserted   int       `db:"inserted" json:"inserted"`
	Duplicates int       `db:"duplicates" json:"duplicates"`
	Skipped    int       `db:"skipped" json:"skipped"`
	StartedAt  time.Time `db:"started_at" json:"started_at"`
	FinishedAt time.Time `db:"finished_at" json:"finished_at"`
}
