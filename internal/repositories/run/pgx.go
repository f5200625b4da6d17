package run

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sociallens/comment-collector/internal/domain"
	"github.com/sociallens/comment-collector/internal/repositories"
	"github.com/sociallens/comment-collector/pkg/logger"
)

type Pgx struct {
	pg     *pgxpool.Pool
	logger logger.Logger
}

func NewPgx(pg *pgxpool.Pool, logger logger.Logger) *Pgx {
	return &Pgx{
		pg:     pg,
		logger: logger.WithComponent("RunRepo"),
	}
}

var _ Repository = (*Pgx)(nil)

// Create stores a run record together with its permanently failed links.
func (p *Pgx) Create(ctx context.Context, record domain.RunRecord) error {
	query, args, err := repositories.SqBuilder.
		Insert("collector_runs").
		Columns("started_at", "finished_at", "output_path", "row_count").
		Values(record.StartedAt, record.FinishedAt, record.OutputPath, record.RowCount).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return repositories.ErrBadQuery
	}

	var runID int64
	if err := p.pg.QueryRow(ctx, query, args...).Scan(&runID); err != nil {
		return err
	}

	for _, link := range record.FailedLinks {
		query, args, err := repositories.SqBuilder.
			Insert("collector_failed_links").
			Columns("run_id", "link").
			Values(runID, link).
			ToSql()
		if err != nil {
			return repositories.ErrBadQuery
		}
		if _, err := p.pg.Exec(ctx, query, args...); err != nil {
			return err
		}
	}

	return nil
}

// GetRecent returns the most recent runs, newest first, without their failed
// link lists.
func (p *Pgx) GetRecent(ctx context.Context, limit int) ([]*domain.RunRecord, error) {
	query, args, err := repositories.SqBuilder.
		Select("id", "started_at", "finished_at", "output_path", "row_count").
		From("collector_runs").
		OrderBy("started_at DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, repositories.ErrBadQuery
	}

	rows, err := p.pg.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*domain.RunRecord
	for rows.Next() {
		var record domain.RunRecord
		if err := rows.Scan(&record.ID, &record.StartedAt, &record.FinishedAt, &record.OutputPath, &record.RowCount); err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
