package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/datalab/datalab/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed dashboard repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) conn(ctx context.Context) db.Queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *repoPG) countBy(ctx context.Context, column string) (map[string]int, error) {
	// column comes from a fixed caller-side set, never user input
	rows, err := r.conn(ctx).Query(ctx,
		fmt.Sprintf(`SELECT %s, COUNT(*) FROM participant GROUP BY %s`, column, column))
	if err != nil {
		return nil, fmt.Errorf("count participants by %s: %w", column, err)
	}
	defer rows.Close()

	out := map[string]int{}
	for rows.Next() {
		var key string
		var n int
		if err := rows.Scan(&key, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[key] = n
	}
	return out, rows.Err()
}

func (r *repoPG) CountByGroup(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "study_group")
}

func (r *repoPG) CountByStatus(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "status")
}

func (r *repoPG) MonthlyInclusions(ctx context.Context, months int) ([]MonthCount, error) {
	since := time.Now().UTC().AddDate(0, -(months - 1), 0)
	since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		FROM participant
		WHERE created_at >= $1
		GROUP BY month
		ORDER BY month`, since)
	if err != nil {
		return nil, fmt.Errorf("monthly inclusions: %w", err)
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var month string
		var n int
		if err := rows.Scan(&month, &n); err != nil {
			return nil, fmt.Errorf("scan month: %w", err)
		}
		counts[month] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// fill gaps so the chart has a continuous axis
	out := make([]MonthCount, 0, months)
	for i := 0; i < months; i++ {
		m := since.AddDate(0, i, 0).Format("2006-01")
		out = append(out, MonthCount{Month: m, Count: counts[m]})
	}
	return out, nil
}

func (r *repoPG) ValuesForQuestion(ctx context.Context, code string) ([]string, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT r.value
		FROM response r
		JOIN question q ON q.id = r.question_id
		WHERE lower(q.code) = lower($1)`, code)
	if err != nil {
		return nil, fmt.Errorf("values for question %s: %w", code, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
