package journal

import "time"

type Status string

const (
	StatusDone           Status = "done"
	StatusSkipped        Status = "skipped"
	StatusFailed         Status = "failed"
	StatusNotImplemented Status = "not_implemented"
)

type Entry struct {
	ID        int64
	MessageID int
	FileID    string
	Kind      string
	PhotoType string
	Path      string
	Size      int64
	Status    Status
	Error     string
	Retryable bool
	Attempts  int
	CreatedAt time.Time
}
