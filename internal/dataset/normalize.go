// Package dataset turns canonical comments into normalized output rows and
// writes the tabular artifacts.
package dataset

import (
	"fmt"
	"time"

	"github.com/sociallens/comment-collector/internal/domain"
)

const (
	// ViewSource is a constant label carried on every row.
	ViewSource = "view comment"
	// UnknownAuthor is the placeholder for comments without an author name.
	UnknownAuthor = "Unknown"
)

// Normalize flattens a two-level comment tree into rows. Sequence ids are
// 1-based in input order and shared by a comment and its replies; reply rows
// get SubID "{sequence}.{k}" with k 1-based per parent. Week stays empty here,
// it is recomputed over the merged set.
func Normalize(comments []domain.Comment, client, url string, platform domain.Platform, capturedAt time.Time) []domain.Row {
	rows := make([]domain.Row, 0, len(comments))

	for i, comment := range comments {
		seq := i + 1
		rows = append(rows, newRow(comment, seq, "", client, url, platform, capturedAt))

		for j, reply := range comment.Replies {
			subID := fmt.Sprintf("%d.%d", seq, j+1)
			rows = append(rows, newRow(reply, seq, subID, client, url, platform, capturedAt))
		}
	}

	return rows
}

func newRow(c domain.Comment, seq int, subID, client, url string, platform domain.Platform, capturedAt time.Time) domain.Row {
	author := c.Author
	if author == "" {
		author = UnknownAuthor
	}

	return domain.Row{
		Sequence:   seq,
		SubID:      subID,
		Date:       c.CreatedAt,
		Likes:      c.LikeCount,
		Message:    c.Message,
		ViewSource: ViewSource,
		CapturedAt: capturedAt,
		Client:     client,
		URL:        url,
		Platform:   platform,
		Author:     author,
	}
}

// WeekOf returns the ISO date of the Monday on or before t.
func WeekOf(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	// time.Weekday counts Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset).Format("2006-01-02")
}

// ApplyWeeks fills the Week column over a full row set. This runs once after
// the merge, not per row during collection.
func ApplyWeeks(rows []domain.Row) {
	for i := range rows {
		rows[i].Week = WeekOf(rows[i].Date)
	}
}
