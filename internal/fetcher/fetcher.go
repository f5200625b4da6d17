// Package fetcher defines the per-platform pipeline stages: account
// resolution, post location and paginated comment retrieval.
package fetcher

import (
	"context"

	"github.com/sociallens/comment-collector/internal/domain"
)

type Client interface {
	Platform() domain.Platform

	// ResolveAccount tries the candidate names in order and returns the first
	// account that matches, tagged with the alias that resolved it. Returns
	// apperrors.ErrNotFound when no candidate succeeds.
	ResolveAccount(ctx context.Context, names []string) (*domain.Account, error)

	// LocatePost derives the platform resource id for the item's link, using
	// pattern extraction first and a bounded listing search as fallback.
	LocatePost(ctx context.Context, account *domain.Account, item domain.BatchItem) (*domain.PostRef, error)

	// FetchComments walks cursor pagination for top-level comments and their
	// replies, bounded by cap counted across both levels. A mid-pagination
	// transport fault yields the partial accumulation, not an error.
	FetchComments(ctx context.Context, account *domain.Account, ref *domain.PostRef, maxItems int) ([]domain.Comment, error)
}
