package domain

import (
	"time"

	"github.com/google/uuid"
)

type ID = uuid.UUID

// TargetID names the editable unit a session is opened over:
// a table's row content, a table's column template, a type's member list.
type TargetID string

// Kind distinguishes what a session edits. Stored in DomainInfo so a
// restored session knows how to reattach to its target.
type Kind string

const (
	KindTableContent  Kind = "table-content"
	KindTableTemplate Kind = "table-template"
	KindTypeMembers   Kind = "type-members"
)

// State is the lifecycle of an editing session.
type State int

const (
	StateCreated State = iota // allocated, not yet announced
	StateOpen                 // accepting joins and edits
	StateClosing              // delete in flight
	StateClosed               // terminal, dispatcher disposed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	default:
		return "closed"
	}
}

// UserState tracks whether a participant is actively typing or just present.
type UserState int

const (
	Watching UserState = iota
	Editing
)

// Location is a participant's cursor/selection, broadcast for presence UI.
type Location struct {
	Table  string `json:"table"`
	Row    string `json:"row"`
	Column string `json:"column"`
}

// Row is one unit of content mutation. Fields is an opaque column->value
// payload; the engine never interprets it.
type Row struct {
	RowID  string            `json:"row_id"`
	Fields map[string]string `json:"fields"`
}

// User is a session participant.
type User struct {
	ID        string
	Authority Authority
	State     UserState
	Location  Location
	Joined    time.Time
}

// Info is the serializable metadata of a session, persisted for crash
// recovery and exposed to clients.
type Info struct {
	ID         ID        `json:"id"`
	DataBaseID string    `json:"database_id"`
	Target     TargetID  `json:"target"`
	Kind       Kind      `json:"kind"`
	Creator    string    `json:"creator"`
	Owner      string    `json:"owner"`
	CreatedAt  time.Time `json:"created_at"`
	Users      []string  `json:"users"`
}

// Result is the outcome payload of a finished session, set exactly once at
// the terminal transition and handed to the versioned store as one commit.
type Result struct {
	Target   TargetID
	Rows     []Row
	Revision int64 // revision produced by the commit
}
