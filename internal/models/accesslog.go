package models

import (
	"fmt"
	"time"
)

// AccessAction is what was done to an entry.
type AccessAction string

const (
	ActionViewed  AccessAction = "viewed"
	ActionCreated AccessAction = "created"
	ActionUpdated AccessAction = "updated"
	ActionDeleted AccessAction = "deleted"
)

// ParseAccessAction accepts the stored spelling of an action.
func ParseAccessAction(s string) (AccessAction, error) {
	switch a := AccessAction(s); a {
	case ActionViewed, ActionCreated, ActionUpdated, ActionDeleted:
		return a, nil
	}
	return "", fmt.Errorf("unknown access action %q", s)
}

// AccessLogEntry is one append-only audit row. EntryName is a snapshot so the
// history stays readable after the entry is deleted.
type AccessLogEntry struct {
	ID          int64        `json:"id"`
	EntryID     string       `json:"entry_id"`
	PrincipalID string       `json:"principal_id"`
	Action      AccessAction `json:"action"`
	EntryName   string       `json:"entry_name"`
	CreatedAt   time.Time    `json:"created_at"`
}
