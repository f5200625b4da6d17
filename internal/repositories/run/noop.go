package run

import (
	"context"

	"github.com/sociallens/comment-collector/internal/domain"
)

// Noop is the archive used when no database is configured.
type Noop struct{}

func NewNoop() *Noop {
	return &Noop{}
}

var _ Repository = (*Noop)(nil)

func (n *Noop) Create(_ context.Context, _ domain.RunRecord) error {
	return nil
}

func (n *Noop) GetRecent(_ context.Context, _ int) ([]*domain.RunRecord, error) {
	return nil, nil
}
