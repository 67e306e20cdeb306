package domain

import "time"

// RowOpKind is the persisted discriminator of a row mutation.
type RowOpKind string

const (
	RowOpAdd    RowOpKind = "add"
	RowOpSet    RowOpKind = "set"
	RowOpRemove RowOpKind = "remove"
)

// RowOp is one applied row mutation, journaled so an interrupted session can
// be rebuilt after a restart by replaying ops in order.
type RowOp struct {
	Kind   RowOpKind `json:"kind"`
	UserID string    `json:"user_id"`
	Rows   []Row     `json:"rows,omitempty"`
	RowIDs []string  `json:"row_ids,omitempty"`
	At     time.Time `json:"at"`
}
