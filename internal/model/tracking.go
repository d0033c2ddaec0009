package model

import "time"

// Per-recipient delivery statuses.
const (
	StatusSent      = "sent"
	StatusDelivered = "delivered"
	StatusOpened    = "opened"
	StatusFailed    = "failed"
	StatusUnknown   = "unknown"
)

// PerRecipientStatus is the delivery state of one address within a message.
// Diagnostic fields are copied verbatim from the provider event that set them.
type PerRecipientStatus struct {
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Reason    string    `json:"reason,omitempty"`
	Code      string    `json:"code,omitempty"`
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"useragent,omitempty"`
	Response  string    `json:"response,omitempty"`
}

// TrackingMetadata carries dispatch context kept alongside the record.
type TrackingMetadata struct {
	CourseID      string `json:"courseId,omitempty"`
	CourseName    string `json:"courseName,omitempty"`
	UseDoNotReply bool   `json:"useDoNotReply"`
}

// TrackingRecord is the durable per-message correlation record, keyed by
// EmailID. Recipients maps the sanitized address key of every to/cc/bcc
// address to its status. Records are never deleted.
type TrackingRecord struct {
	EmailID        string                        `json:"emailId"`
	RecipientKey   string                        `json:"recipientKey"`
	SenderKey      string                        `json:"senderKey"`
	RecipientEmail string                        `json:"recipientEmail"`
	SenderEmail    string                        `json:"senderEmail"`
	SenderName     string                        `json:"senderName"`
	Subject        string                        `json:"subject"`
	CreatedAt      time.Time                     `json:"createdAt"`
	Sent           bool                          `json:"sent"`
	Metadata       TrackingMetadata              `json:"metadata"`
	Recipients     map[string]PerRecipientStatus `json:"recipients"`
}

// MessageCopy is a denormalized per-user copy of a dispatched message:
// the recipient's inbox entry and the sender's sent-folder entry share
// this shape. Status is kept in sync with the tracking record for the
// primary recipient only.
type MessageCopy struct {
	EmailID   string    `json:"emailId"`
	Subject   string    `json:"subject"`
	FromEmail string    `json:"fromEmail"`
	FromName  string    `json:"fromName"`
	ToEmail   string    `json:"toEmail"`
	HTML      string    `json:"html,omitempty"`
	Text      string    `json:"text,omitempty"`
	Status    string    `json:"status"`
	StatusAt  time.Time `json:"statusAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// NotificationEntry is the unread notification written for the recipient.
type NotificationEntry struct {
	EmailID        string    `json:"emailId"`
	RecipientEmail string    `json:"recipientEmail"`
	Subject        string    `json:"subject"`
	Read           bool      `json:"read"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CourseNote is one entry of a course's student-notes array.
type CourseNote struct {
	EmailID        string    `json:"emailId"`
	CourseName     string    `json:"courseName,omitempty"`
	RecipientEmail string    `json:"recipientEmail"`
	Subject        string    `json:"subject"`
	CreatedAt      time.Time `json:"createdAt"`
}
