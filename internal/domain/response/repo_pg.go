package response

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed response repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Upsert(ctx context.Context, resp *Response) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO response (participant_id, question_id, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (participant_id, question_id)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
		RETURNING id, created_at, updated_at`,
		resp.ParticipantID, resp.QuestionID, resp.Value,
	).Scan(&resp.ID, &resp.CreatedAt, &resp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

func (r *repoPG) ListByParticipant(ctx context.Context, participantID int64) ([]*Response, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, participant_id, question_id, value, created_at, updated_at
		FROM response
		WHERE participant_id = $1
		ORDER BY question_id`, participantID)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	var out []*Response
	for rows.Next() {
		var resp Response
		if err := rows.Scan(&resp.ID, &resp.ParticipantID, &resp.QuestionID, &resp.Value, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, &resp)
	}
	return out, rows.Err()
}

func (r *repoPG) MapByParticipant(ctx context.Context, participantID int64) (map[int64]string, error) {
	list, err := r.ListByParticipant(ctx, participantID)
	if err != nil {
		return nil, err
	}
	m := make(map[int64]string, len(list))
	for _, resp := range list {
		m[resp.QuestionID] = resp.Value
	}
	return m, nil
}
