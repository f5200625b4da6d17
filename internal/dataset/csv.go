package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/sociallens/comment-collector/internal/domain"
)

// Columns is the fixed output column order. live_video_timestamp and
// image_urls are reserved placeholder columns for richer media types.
var Columns = []string{
	"id", "sub_id", "date", "week", "likes", "live_video_timestamp",
	"comment", "image_urls", "view_source", "timestamp",
	"client", "url", "platform", "author",
}

const (
	dateLayout      = "2006-01-02 15:04:05"
	placeholderLive = "-"
)

// WriteCSV writes rows to path in the fixed column order. The file is written
// in one pass after the full in-memory table is assembled.
func WriteCSV(path string, rows []domain.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, row := range rows {
		if err := w.Write(record(row)); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return f.Sync()
}

func record(row domain.Row) []string {
	date := ""
	if !row.Date.IsZero() {
		date = row.Date.Format(dateLayout)
	}

	return []string{
		strconv.Itoa(row.Sequence),
		row.SubID,
		date,
		row.Week,
		strconv.Itoa(row.Likes),
		placeholderLive,
		row.Message,
		"", // image_urls
		row.ViewSource,
		row.CapturedAt.Format(dateLayout),
		row.Client,
		row.URL,
		string(row.Platform),
		row.Author,
	}
}
