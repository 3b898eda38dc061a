package domain

import "time"

type NotificationKind string

const (
	NotifyBreachDetected NotificationKind = "breach_detected"
	NotifyCompromised    NotificationKind = "compromised"
	NotifyRestored       NotificationKind = "restored"
)

// Notification — одноразовый тост для оператора.
type Notification struct {
	ID          string           `json:"id"`
	Target      Target           `json:"target"`
	Kind        NotificationKind `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Variant     string           `json:"variant"` // "destructive" или "default"
	Timestamp   time.Time        `json:"timestamp"`
}
