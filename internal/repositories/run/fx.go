package run

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sociallens/comment-collector/pkg/logger"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewRepository),
)

// NewRepository picks the pgx-backed archive when a pool is available and the
// no-op archive otherwise.
func NewRepository(pool *pgxpool.Pool, log logger.Logger) Repository {
	if pool == nil {
		return NewNoop()
	}
	return NewPgx(pool, log)
}
