// Package comment holds free-text notes staff leave on a participant's file.
package comment

import "time"

// Comment is a note on a participant, attributed to the account that wrote it.
type Comment struct {
	ID            int64     `json:"id" db:"id"`
	ParticipantID int64     `json:"participant_id" db:"participant_id"`
	Author        string    `json:"author" db:"author"`
	Body          string    `json:"body" db:"body"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
