package run

import (
	"context"
	"errors"

	"github.com/sociallens/comment-collector/internal/domain"
)

var ErrNotFound = errors.New("run not found")

// Repository archives completed collection runs and their permanently failed
// links. Archiving is best effort; the collector logs and continues when it
// fails.
type Repository interface {
	Create(ctx context.Context, record domain.RunRecord) error
	GetRecent(ctx context.Context, limit int) ([]*domain.RunRecord, error)
}
