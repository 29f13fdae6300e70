package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
	"github.com/datalab/datalab/pkg/pagination"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed audit repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) Insert(ctx context.Context, e *Entry) error {
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO audit_entry (id, actor, participant_id, action, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Actor, e.ParticipantID, e.Action, e.Subject, e.Detail, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, f Filter, p pagination.Params) ([]*Entry, error) {
	query := `
		SELECT id, actor, participant_id, action, subject, detail, created_at
		FROM audit_entry
		WHERE 1=1`
	args := []any{}
	i := 1
	if f.Actor != "" {
		query += fmt.Sprintf(" AND actor = $%d", i)
		args = append(args, f.Actor)
		i++
	}
	if f.Action != "" {
		query += fmt.Sprintf(" AND action = $%d", i)
		args = append(args, f.Action)
		i++
	}
	if f.ParticipantID != nil {
		query += fmt.Sprintf(" AND participant_id = $%d", i)
		args = append(args, *f.ParticipantID)
		i++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, p.Limit, p.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit entries: %w", err)
	}
	defer rows.Close()

	var out []*Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Actor, &e.ParticipantID, &e.Action, &e.Subject, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *repoPG) Exists(ctx context.Context, participantID int64, action string) (bool, error) {
	var exists bool
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM audit_entry
			WHERE participant_id = $1 AND action = $2
		)`, participantID, action).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check audit entry: %w", err)
	}
	return exists, nil
}
