// Package collector drives the collection pipeline over a batch of
// (client, link) pairs and produces the combined dataset.
package collector

import (
	"context"

	"github.com/sociallens/comment-collector/internal/domain"
)

type Client interface {
	// Run reads the configured batch input and alias mapping, then executes
	// RunBatch.
	Run(ctx context.Context) (*domain.RunResult, error)

	// RunBatch processes every item, retries the failed links once, merges
	// both platforms' rows and writes the combined CSV artifact. An empty
	// batch or an empty result yields (nil, nil), not an error.
	RunBatch(ctx context.Context, items []domain.BatchItem) (*domain.RunResult, error)
}
