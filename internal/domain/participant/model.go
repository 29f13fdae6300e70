// Package participant manages study subjects: enrollment, group-derived
// identification codes and the completion lifecycle of their case report form.
package participant

import (
	"fmt"
	"time"

	"github.com/datalab/datalab/internal/domain/catalog"
)

// Status is the CRF completion state of a participant.
type Status string

const (
	StatusIncomplete     Status = "INCOMPLETE"
	StatusComplete       Status = "COMPLETE"
	StatusNotCompletable Status = "NOT_COMPLETABLE"
)

// Participant is an enrolled study subject. RecruiterID points at the
// account that enrolled them and receives their reminders.
type Participant struct {
	ID            int64         `json:"id" db:"id"`
	Code          string        `json:"code" db:"code"`
	Group         catalog.Group `json:"group" db:"study_group"`
	Name          string        `json:"name" db:"name"`
	Phone         string        `json:"phone" db:"phone"`
	Address       string        `json:"address" db:"address"`
	RecruiterID   int64         `json:"recruiter_id" db:"recruiter_id"`
	Status        Status        `json:"status" db:"status"`
	Justification *string       `json:"justification,omitempty" db:"justification"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" db:"updated_at"`
}

// Overrides carries optional profile fields submitted alongside a response
// batch. Blank fields leave the stored value untouched.
type Overrides struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Group   string `json:"group"`
}

// DeriveCode computes the participant's public identifier from group and id.
// The mapping is pure, so re-deriving for an existing participant always
// yields the code it already has.
func DeriveCode(g catalog.Group, id int64) string {
	prefix := "CT"
	if g == catalog.GroupCase {
		prefix = "CS"
	}
	return fmt.Sprintf("%s%d", prefix, id)
}

// Filter narrows List queries. Zero values match everything.
type Filter struct {
	Group  catalog.Group
	Status Status
}
