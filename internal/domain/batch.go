package domain

import "time"

// BatchItem is one (client, link) pair from the inbound batch. Content is an
// optional snippet of the post's text, used only by the Facebook locator's
// content-match fallback.
type BatchItem struct {
	Client  string
	Link    string
	Content string
}

// RunRecord is what the run archive stores about a completed run.
type RunRecord struct {
	ID          int64
	StartedAt   time.Time
	FinishedAt  time.Time
	OutputPath  string
	RowCount    int
	FailedLinks []string
}
