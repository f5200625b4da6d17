package domain

import "time"

// Comment is the canonical comment shape both platforms convert into at their
// boundary. Nesting is two levels deep: a reply never carries replies of its own.
type Comment struct {
	ID         string
	Author     string
	Message    string
	CreatedAt  time.Time
	LikeCount  int
	ChildCount int
	Replies    []Comment
}
