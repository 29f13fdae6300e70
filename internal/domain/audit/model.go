// Package audit records who did what to which participant. Every mutating
// operation in the system leaves exactly one entry here.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Well-known action verbs. Stored as-is so historical rows stay greppable.
const (
	ActionCreate   = "CREAR"
	ActionUpdate   = "ACTUALIZAR"
	ActionDelete   = "ELIMINAR"
	ActionExport   = "EXPORTAR"
	ActionReminder = "ENVIO_RECORDATORIO"
)

// Entry is a single audit trail record.
type Entry struct {
	ID            uuid.UUID `json:"id" db:"id"`
	Actor         string    `json:"actor" db:"actor"`
	ParticipantID *int64    `json:"participant_id,omitempty" db:"participant_id"`
	Action        string    `json:"action" db:"action"`
	Subject       string    `json:"subject" db:"subject"`
	Detail        string    `json:"detail" db:"detail"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Filter narrows List queries. Zero values match everything.
type Filter struct {
	Actor         string
	Action        string
	ParticipantID *int64
}
