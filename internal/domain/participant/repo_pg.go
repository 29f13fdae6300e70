package participant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
	"github.com/datalab/datalab/pkg/pagination"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed participant repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const participantCols = `id, code, study_group, name, phone, address, recruiter_id, status, justification, created_at, updated_at`

func scanParticipant(row pgx.Row) (*Participant, error) {
	var p Participant
	err := row.Scan(&p.ID, &p.Code, &p.Group, &p.Name, &p.Phone, &p.Address, &p.RecruiterID, &p.Status, &p.Justification, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan participant: %w", err)
	}
	return &p, nil
}

func (r *repoPG) Create(ctx context.Context, p *Participant) error {
	err := r.conn(ctx).QueryRow(ctx, `
		INSERT INTO participant (code, study_group, name, phone, address, recruiter_id, status, justification)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		p.Code, p.Group, p.Name, p.Phone, p.Address, p.RecruiterID, p.Status, p.Justification,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert participant: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id int64) (*Participant, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+participantCols+` FROM participant WHERE id = $1`, id)
	return scanParticipant(row)
}

func (r *repoPG) GetByCode(ctx context.Context, code string) (*Participant, error) {
	row := r.conn(ctx).QueryRow(ctx,
		`SELECT `+participantCols+` FROM participant WHERE code = $1`, code)
	return scanParticipant(row)
}

func (r *repoPG) List(ctx context.Context, f Filter, pg pagination.Params) ([]*Participant, int, error) {
	where := " WHERE 1=1"
	args := []any{}
	i := 1
	if f.Group != "" {
		where += fmt.Sprintf(" AND study_group = $%d", i)
		args = append(args, f.Group)
		i++
	}
	if f.Status != "" {
		where += fmt.Sprintf(" AND status = $%d", i)
		args = append(args, f.Status)
		i++
	}

	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM participant`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count participants: %w", err)
	}

	query := `SELECT ` + participantCols + ` FROM participant` + where +
		fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", i, i+1)
	args = append(args, pg.Limit, pg.Offset)

	rows, err := r.conn(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list participants: %w", err)
	}
	defer rows.Close()

	var out []*Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

func (r *repoPG) UpdateCode(ctx context.Context, id int64, code string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE participant SET code = $1, updated_at = $2 WHERE id = $3`,
		code, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update participant code: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateProfile(ctx context.Context, p *Participant) error {
	tag, err := r.conn(ctx).Exec(ctx, `
		UPDATE participant
		SET code = $1, study_group = $2, name = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $7`,
		p.Code, p.Group, p.Name, p.Phone, p.Address, time.Now().UTC(), p.ID)
	if err != nil {
		return fmt.Errorf("update participant profile: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) UpdateStatus(ctx context.Context, id int64, status Status, justification *string) error {
	tag, err := r.conn(ctx).Exec(ctx,
		`UPDATE participant SET status = $1, justification = $2, updated_at = $3 WHERE id = $4`,
		status, justification, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("update participant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id int64) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM participant WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
