// Package response stores participant answers and implements the form
// engine: per-answer validation against catalog rules, batch submission and
// completeness evaluation.
package response

import "time"

// Response is one stored answer. A participant holds at most one response
// per question.
type Response struct {
	ID            int64     `json:"id" db:"id"`
	ParticipantID int64     `json:"participant_id" db:"participant_id"`
	QuestionID    int64     `json:"question_id" db:"question_id"`
	Value         string    `json:"value" db:"value"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
