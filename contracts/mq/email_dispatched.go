package mq

import "time"

// EmailDispatchedPayload is published on routing key "email.dispatched"
// after a recipient's tracking record has been written.
type EmailDispatchedPayload struct {
	EmailID        string    `json:"email_id"`
	RecipientEmail string    `json:"recipient_email"`
	SenderEmail    string    `json:"sender_email"`
	Subject        string    `json:"subject"`
	CourseID       string    `json:"course_id,omitempty"`
	DispatchedAt   time.Time `json:"dispatched_at"`
}
