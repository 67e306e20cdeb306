package event

import (
	"gridlab/domain"

	"github.com/google/uuid"
)

// DomainEvent is anything broadcast to session subscribers. Seq is assigned
// inside the same dispatcher task as the mutation it describes, so for one
// session the sequence reflects exactly the order mutations were applied.
type DomainEvent interface {
	DomainID() domain.ID
	Seq() int64
}

// Header is embedded by every event. TaskID lets an RPC caller correlate the
// broadcast with the outcome of its own call.
type Header struct {
	Domain    domain.ID
	Index     int64
	TaskID    uuid.UUID
	Signature domain.SignatureDate
}

func (h Header) DomainID() domain.ID { return h.Domain }
func (h Header) Seq() int64          { return h.Index }

type DomainCreated struct {
	Header
	Info domain.Info
}

type DomainDeleted struct {
	Header
	Cancelled bool
	Revision  int64
}

type UserJoined struct {
	Header
	UserID    string
	Authority domain.Authority
}

// RemoveReason distinguishes a voluntary leave from an eviction.
type RemoveReason string

const (
	ReasonLeave RemoveReason = "leave"
	ReasonKick  RemoveReason = "kick"
)

type UserRemoved struct {
	Header
	UserID  string
	Reason  RemoveReason
	Comment string
}

type UserEditBegun struct {
	Header
	UserID   string
	Location domain.Location
}

type UserEditEnded struct {
	Header
	UserID string
}

type UserLocationChanged struct {
	Header
	UserID   string
	Location domain.Location
}

type OwnerChanged struct {
	Header
	OwnerID string
}

type RowsAdded struct {
	Header
	UserID string
	Rows   []domain.Row
}

type RowsSet struct {
	Header
	UserID string
	Rows   []domain.Row
}

type RowsRemoved struct {
	Header
	UserID string
	RowIDs []string
}
