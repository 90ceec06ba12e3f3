package domain

import "time"

// ChangeOperation describes a persisted activity operation for an idea.
type ChangeOperation string

// ChangeOperation values used by the local activity ledger.
const (
	ChangeOperationCreate   ChangeOperation = "create"
	ChangeOperationUpdate   ChangeOperation = "update"
	ChangeOperationMove     ChangeOperation = "move"
	ChangeOperationCollapse ChangeOperation = "collapse"
	ChangeOperationImport   ChangeOperation = "import"
	ChangeOperationArchive  ChangeOperation = "archive"
	ChangeOperationRestore  ChangeOperation = "restore"
	ChangeOperationDelete   ChangeOperation = "delete"
)

// ChangeEvent represents a single activity-log entry for a project idea.
type ChangeEvent struct {
	ID         int64
	ProjectID  string
	IdeaID     string
	Operation  ChangeOperation
	Metadata   map[string]string
	OccurredAt time.Time
}

// QuadrantRollup summarizes how a project's active ideas spread across
// the four matrix quadrants.
type QuadrantRollup struct {
	ProjectID   string
	TotalIdeas  int
	QuickWins   int
	BigBets     int
	Incremental int
	MoneyPit    int
}
