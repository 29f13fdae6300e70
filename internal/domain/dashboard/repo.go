package dashboard

import "context"

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	CountByGroup(ctx context.Context) (map[string]int, error)
	CountByStatus(ctx context.Context) (map[string]int, error)
	// MonthlyInclusions returns per-month enrollment counts for the last
	// n months, oldest first. Months without enrollments are included with
	// a zero count.
	MonthlyInclusions(ctx context.Context, months int) ([]MonthCount, error)
	// ValuesForQuestion returns every stored answer for the question code.
	ValuesForQuestion(ctx context.Context, code string) ([]string, error)
}
