package domain

import "time"

// Row is one normalized output record. Sequence is 1-based in retrieval order
// and shared between a comment and its replies; SubID is empty for top-level
// comments and "{sequence}.{k}" for replies. Week is filled in by the final
// merge pass, not during normalization.
type Row struct {
	Sequence   int
	SubID      string
	Date       time.Time
	Week       string
	Likes      int
	Message    string
	ViewSource string
	CapturedAt time.Time
	Client     string
	URL        string
	Platform   Platform
	Author     string
}

// RunResult is the outcome of one collection run.
type RunResult struct {
	Rows        []Row
	FailedLinks []string
	OutputPath  string
}
