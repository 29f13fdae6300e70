package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const questionCols = `id, code, statement, data_type, options, applies_to,
	section, display_order, required, validation_rule, created_at`

func (r *repoPG) scanQuestion(row pgx.Row) (*Question, error) {
	var q Question
	err := row.Scan(&q.ID, &q.Code, &q.Statement, &q.DataType, &q.Options, &q.AppliesTo,
		&q.Section, &q.DisplayOrder, &q.Required, &q.ValidationRule, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &q, err
}

func (r *repoPG) Create(ctx context.Context, q *Question) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO question (code, statement, data_type, options, applies_to,
			section, display_order, required, validation_rule)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING id, created_at`,
		q.Code, q.Statement, q.DataType, q.Options, q.AppliesTo,
		q.Section, q.DisplayOrder, q.Required, q.ValidationRule).
		Scan(&q.ID, &q.CreatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Question, error) {
	return r.scanQuestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+questionCols+` FROM question WHERE id = $1`, id))
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Question, error) {
	return r.scanQuestion(r.conn(ctx).QueryRow(ctx,
		`SELECT `+questionCols+` FROM question WHERE code = $1`, code))
}

func (r *repoPG) List(ctx context.Context) ([]*Question, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+questionCols+` FROM question
		ORDER BY section ASC, display_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Question
	for rows.Next() {
		q, err := r.scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, q)
	}
	return items, rows.Err()
}

func (r *repoPG) DeleteByCode(ctx context.Context, code string) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM question WHERE code = $1`, code)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
