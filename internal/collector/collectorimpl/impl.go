package collectorimpl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/lo"
	"github.com/sociallens/comment-collector/internal/collector"
	"github.com/sociallens/comment-collector/internal/dataset"
	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/fetcher"
	"github.com/sociallens/comment-collector/internal/input"
	"github.com/sociallens/comment-collector/internal/platform/facebook"
	"github.com/sociallens/comment-collector/internal/platform/instagram"
	"github.com/sociallens/comment-collector/internal/repositories/run"
	"github.com/sociallens/comment-collector/pkg/apperrors"
	"github.com/sociallens/comment-collector/pkg/config"
	"github.com/sociallens/comment-collector/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Facebook  *facebook.Impl
	Instagram *instagram.Impl
	RunRepo   run.Repository
	Logger    logger.Logger
	Config    *config.Config
}

type Impl struct {
	facebook  fetcher.Client
	instagram fetcher.Client
	runRepo   run.Repository
	logger    logger.Logger
	cfg       *config.Config
	mapping   input.Mapping
}

func New(opts Opts) *Impl {
	return &Impl{
		facebook:  opts.Facebook,
		instagram: opts.Instagram,
		runRepo:   opts.RunRepo,
		logger:    opts.Logger.WithComponent("Collector"),
		cfg:       opts.Config,
		mapping:   input.Mapping{},
	}
}

var _ collector.Client = (*Impl)(nil)

func (c *Impl) Run(ctx context.Context) (*domain.RunResult, error) {
	items, err := input.ReadBatch(c.cfg.Collector.InputPath, c.logger)
	if err != nil {
		return nil, err
	}

	mapping, err := input.ReadMapping(c.cfg.Collector.MappingPath)
	if err != nil {
		return nil, err
	}
	c.mapping = mapping

	return c.RunBatch(ctx, items)
}

func (c *Impl) RunBatch(ctx context.Context, items []domain.BatchItem) (*domain.RunResult, error) {
	if len(items) == 0 {
		c.logger.Info("No batch items to process")
		return nil, nil
	}

	startedAt := time.Now()

	if err := os.MkdirAll(c.cfg.Collector.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	c.clearOutputDir()

	igItems, fbItems, skipped := partition(items)
	if skipped > 0 {
		c.logger.Warn("Skipped links matching neither platform", "count", skipped)
	}
	c.logger.Info("Starting batch", "instagram", len(igItems), "facebook", len(fbItems))

	var rows []domain.Row
	var failed []domain.BatchItem

	rows, failed = c.processPlatform(ctx, c.instagram, igItems, rows, failed)
	rows, failed = c.processPlatform(ctx, c.facebook, fbItems, rows, failed)

	tempPaths := c.writePlatformArtifacts(rows)

	// One retry pass over the unique failed links, same pipeline.
	rows, permanentFailed := c.retryFailed(ctx, rows, failed)

	if len(rows) == 0 {
		c.logger.Info("No comments were collected from any platform",
			"failed_links", len(permanentFailed))
		c.cleanup(tempPaths)
		return nil, nil
	}

	dataset.ApplyWeeks(rows)

	outputPath := filepath.Join(
		c.cfg.Collector.OutputDir,
		fmt.Sprintf("all_social_comments_%s.csv", startedAt.Format("20060102_150405")),
	)
	if err := dataset.WriteCSV(outputPath, rows); err != nil {
		return nil, fmt.Errorf("failed to write combined dataset: %w", err)
	}
	c.logger.Info("Wrote combined dataset", "path", outputPath, "rows", len(rows))

	// Intermediate per-platform files go away only after the combined
	// artifact is durably written.
	c.cleanup(tempPaths)

	c.archive(ctx, domain.RunRecord{
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
		OutputPath:  outputPath,
		RowCount:    len(rows),
		FailedLinks: permanentFailed,
	})

	return &domain.RunResult{
		Rows:        rows,
		FailedLinks: permanentFailed,
		OutputPath:  outputPath,
	}, nil
}

func (c *Impl) processPlatform(ctx context.Context, f fetcher.Client, items []domain.BatchItem, rows []domain.Row, failed []domain.BatchItem) ([]domain.Row, []domain.BatchItem) {
	for i, item := range items {
		itemRows, err := c.processItem(ctx, f, item)
		if err != nil {
			c.handleFailure(item, err)
			failed = append(failed, item)
		} else {
			rows = append(rows, itemRows...)
		}

		if i < len(items)-1 {
			time.Sleep(c.cfg.Collector.LinkDelay)
		}
	}
	return rows, failed
}

// processItem walks one pair through resolve, locate, retrieve and normalize.
// Any stage error, including a panic, converts to a failure for this pair only.
func (c *Impl) processItem(ctx context.Context, f fetcher.Client, item domain.BatchItem) (rows []domain.Row, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("panic while processing %s: %v", item.Link, r)
		}
	}()

	if item.Client == "" {
		return nil, fmt.Errorf("%w: missing client name for link %s", apperrors.ErrInvalidInput, item.Link)
	}

	c.logger.Info("Processing link", "platform", f.Platform(), "client", item.Client, "link", item.Link)

	account, err := f.ResolveAccount(ctx, c.mapping.Aliases(item.Client))
	if err != nil {
		return nil, err
	}

	ref, err := f.LocatePost(ctx, account, item)
	if err != nil {
		return nil, err
	}

	comments, err := f.FetchComments(ctx, account, ref, c.cfg.Collector.CommentCap)
	if err != nil {
		return nil, err
	}
	if len(comments) == 0 {
		return nil, fmt.Errorf("%w: no comments found for %s", apperrors.ErrNotFound, item.Link)
	}

	rows = dataset.Normalize(comments, account.Alias, item.Link, f.Platform(), time.Now())
	c.logger.Info("Collected rows", "link", item.Link, "rows", len(rows))
	return rows, nil
}

func (c *Impl) handleFailure(item domain.BatchItem, err error) {
	switch {
	case apperrors.IsRateLimited(err):
		c.logger.Warn("Rate limit hit, pausing before continuing",
			"link", item.Link, "pause", c.cfg.Collector.RateLimitWait.String())
		time.Sleep(c.cfg.Collector.RateLimitWait)
	case apperrors.IsInvalidInput(err):
		c.logger.Warn("Skipping pair with malformed input", "link", item.Link, "error", err)
	default:
		c.logger.Error("Failed to process link", "link", item.Link, "error", err)
	}
}

func (c *Impl) retryFailed(ctx context.Context, rows []domain.Row, failed []domain.BatchItem) ([]domain.Row, []string) {
	unique := lo.UniqBy(failed, func(item domain.BatchItem) string { return item.Link })
	if len(unique) == 0 {
		return rows, nil
	}

	c.logger.Info("Retrying failed links", "count", len(unique))

	var permanent []string
	for _, item := range unique {
		f := c.fetcherFor(item.Link)
		if f == nil {
			permanent = append(permanent, item.Link)
			continue
		}

		itemRows, err := c.processItem(ctx, f, item)
		if err != nil {
			c.handleFailure(item, err)
			c.logger.Warn("Link failed permanently after retry", "link", item.Link)
			permanent = append(permanent, item.Link)
			continue
		}
		c.logger.Info("Retry succeeded", "link", item.Link, "rows", len(itemRows))
		rows = append(rows, itemRows...)
	}

	return rows, permanent
}

func (c *Impl) fetcherFor(link string) fetcher.Client {
	switch domain.PlatformOfLink(link) {
	case domain.PlatformFacebook:
		return c.facebook
	case domain.PlatformInstagram:
		return c.instagram
	default:
		return nil
	}
}

func partition(items []domain.BatchItem) (ig, fb []domain.BatchItem, skipped int) {
	for _, item := range items {
		switch domain.PlatformOfLink(item.Link) {
		case domain.PlatformInstagram:
			ig = append(ig, item)
		case domain.PlatformFacebook:
			fb = append(fb, item)
		default:
			skipped++
		}
	}
	return ig, fb, skipped
}
