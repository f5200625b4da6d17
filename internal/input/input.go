// Package input reads the inbound batch table and the optional alias mapping.
package input

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/match"
	"github.com/sociallens/comment-collector/pkg/logger"
)

// Mapping translates a display client name into the platform alias names to
// try when resolving an account. The client column itself is the fallback.
type Mapping map[string][]string

// ReadBatch parses the batch CSV. The header must contain "client" and "link"
// columns; "content" is optional. Malformed rows are logged and skipped, they
// never abort the batch.
func ReadBatch(path string, log logger.Logger) ([]domain.BatchItem, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch file: %w", err)
	}
	defer f.Close()

	return parseBatch(f, log)
}

func parseBatch(r io.Reader, log logger.Logger) ([]domain.BatchItem, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read batch header: %w", err)
	}

	clientIdx, linkIdx, contentIdx := -1, -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "client":
			clientIdx = i
		case "link":
			linkIdx = i
		case "content":
			contentIdx = i
		}
	}
	if clientIdx < 0 || linkIdx < 0 {
		return nil, fmt.Errorf("batch header must contain client and link columns, got %v", header)
	}

	var items []domain.BatchItem
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			log.Warn("Skipping malformed batch row", "line", line, "error", err)
			continue
		}
		if clientIdx >= len(record) || linkIdx >= len(record) {
			log.Warn("Skipping short batch row", "line", line)
			continue
		}

		item := domain.BatchItem{
			Client: strings.TrimSpace(record[clientIdx]),
			Link:   strings.TrimSpace(record[linkIdx]),
		}
		if contentIdx >= 0 && contentIdx < len(record) {
			item.Content = strings.TrimSpace(record[contentIdx])
		}
		if item.Link == "" {
			log.Warn("Skipping batch row without link", "line", line)
			continue
		}

		items = append(items, item)
	}

	return items, nil
}

// ReadMapping loads the alias mapping JSON. An empty path yields an empty
// mapping.
func ReadMapping(path string) (Mapping, error) {
	if path == "" {
		return Mapping{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	mapping := Mapping{}
	if err := json.Unmarshal(data, &mapping); err != nil {
		return nil, fmt.Errorf("failed to parse mapping file: %w", err)
	}
	return mapping, nil
}

// Aliases returns the ordered candidate names for a client: mapped aliases
// first if present, otherwise the client value split on commas.
func (m Mapping) Aliases(client string) []string {
	if aliases, ok := m[client]; ok && len(aliases) > 0 {
		return aliases
	}
	return match.SplitAliases(client)
}
