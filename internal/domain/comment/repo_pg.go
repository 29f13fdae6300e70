package comment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed comment repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Insert(ctx context.Context, c *Comment) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO participant_comment (participant_id, author, body)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`,
		c.ParticipantID, c.Author, c.Body,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

func (r *repoPG) ListByParticipant(ctx context.Context, participantID int64) ([]*Comment, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, participant_id, author, body, created_at
		FROM participant_comment
		WHERE participant_id = $1
		ORDER BY created_at DESC`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	var out []*Comment
	for rows.Next() {
		var c Comment
		if err := rows.Scan(&c.ID, &c.ParticipantID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
