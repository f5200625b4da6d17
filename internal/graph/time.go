package graph

import "time"

// Graph API timestamps look like "2013-01-25T00:11:22+0000"; some surfaces
// return strict RFC 3339 instead.
const timeLayout = "2006-01-02T15:04:05-0700"

// ParseTime parses a Graph API timestamp, returning the zero time for empty
// or unparseable values. Missing dates surface as empty cells downstream, not
// as failures.
func ParseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}
