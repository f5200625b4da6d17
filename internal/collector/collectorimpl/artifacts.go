package collectorimpl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sociallens/comment-collector/internal/dataset"
	"github.com/sociallens/comment-collector/internal/domain"
)

// clearOutputDir removes leftover files from earlier runs. Failures are logged
// and never abort the run.
func (c *Impl) clearOutputDir() {
	entries, err := os.ReadDir(c.cfg.Collector.OutputDir)
	if err != nil {
		c.logger.Warn("Failed to read output directory", "error", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(c.cfg.Collector.OutputDir, entry.Name())
		if err := os.Remove(path); err != nil {
			c.logger.Warn("Failed to remove old output file", "path", path, "error", err)
			continue
		}
		c.logger.Debug("Removed old output file", "path", path)
	}
}

// writePlatformArtifacts writes the intermediate per-platform CSVs collected
// so far. They exist so a crash mid-run leaves something usable behind; the
// final merge pass deletes them.
func (c *Impl) writePlatformArtifacts(rows []domain.Row) []string {
	stamp := time.Now().Format("20060102_150405")
	var paths []string

	for _, platform := range []domain.Platform{domain.PlatformInstagram, domain.PlatformFacebook} {
		var subset []domain.Row
		for _, row := range rows {
			if row.Platform == platform {
				subset = append(subset, row)
			}
		}
		if len(subset) == 0 {
			continue
		}

		path := filepath.Join(
			c.cfg.Collector.OutputDir,
			fmt.Sprintf("%s_comments_%s.csv", platform, stamp),
		)
		if err := dataset.WriteCSV(path, subset); err != nil {
			c.logger.Warn("Failed to write platform artifact", "path", path, "error", err)
			continue
		}
		paths = append(paths, path)
	}

	return paths
}

// cleanup deletes intermediate artifacts. Failures are logged, never escalated.
func (c *Impl) cleanup(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil {
			c.logger.Warn("Failed to clean up temporary file", "path", path, "error", err)
			continue
		}
		c.logger.Info("Deleted temporary file", "path", path)
	}
}

// archive records the run in the run-history store when one is configured.
func (c *Impl) archive(ctx context.Context, record domain.RunRecord) {
	if err := c.runRepo.Create(ctx, record); err != nil {
		c.logger.Warn("Failed to archive run", "error", err)
	}
}
