// Package dashboard aggregates enrollment and response statistics for the
// study overview screen.
package dashboard

// MonthCount is the number of inclusions in one calendar month.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}

// Stats is the full dashboard payload.
type Stats struct {
	TotalParticipants int            `json:"total_participants"`
	EnrollmentTarget  int            `json:"enrollment_target"`
	ByGroup           map[string]int `json:"by_group"`
	ByStatus          map[string]int `json:"by_status"`
	MonthlyInclusions []MonthCount   `json:"monthly_inclusions"`
	SexBreakdown      map[string]int `json:"sex_breakdown"`
	AgeBreakdown      map[string]int `json:"age_breakdown"`
}
