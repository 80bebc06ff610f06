package notification

import "time"

type Type string

const (
	TypeLeaveApplied  Type = "leave_applied"
	TypeLeaveDecision Type = "leave_decision"
	TypeLeaveEdited   Type = "leave_edited"
	TypeLeaveDeleted  Type = "leave_deleted"
)

// Notification entity, backed by the notifications table.
type Notification struct {
	ID          string
	RecipientID string
	Type        Type
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}
