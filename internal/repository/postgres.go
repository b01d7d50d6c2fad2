package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/andres10976/keyword-service/internal/model"
)

// Postgres keeps records in the keywords table. The position column
// carries storage order; id is deliberately not unique because an update
// may copy an existing id onto another record.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) All(ctx context.Context) ([]model.Keyword, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, keyword, deleted FROM keywords ORDER BY position`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keywords := []model.Keyword{}
	for rows.Next() {
		var kw model.Keyword
		if err := rows.Scan(&kw.ID, &kw.Keyword, &kw.Deleted); err != nil {
			return nil, err
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

func (p *Postgres) Append(ctx context.Context, kw model.Keyword) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO keywords (id, keyword, deleted) VALUES ($1, $2, $3)`,
		kw.ID, kw.Keyword, kw.Deleted,
	)
	return err
}

func (p *Postgres) Replace(ctx context.Context, pos int, kw model.Keyword) error {
	tag, err := p.pool.Exec(ctx,
		`UPDATE keywords SET id = $1, keyword = $2, deleted = $3
		 WHERE position = (
			SELECT position FROM keywords ORDER BY position OFFSET $4 LIMIT 1
		 )`,
		kw.ID, kw.Keyword, kw.Deleted, pos,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("position %d out of range", pos)
	}
	return nil
}
