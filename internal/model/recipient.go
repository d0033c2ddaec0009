package model

import "time"

// RecipientSpec is one requested outgoing message, as supplied by the caller.
type RecipientSpec struct {
	To            string   `json:"to"`
	Cc            []string `json:"cc,omitempty"`
	Bcc           []string `json:"bcc,omitempty"`
	Subject       string   `json:"subject"`
	HTML          string   `json:"html,omitempty"`
	Text          string   `json:"text,omitempty"`
	UseDoNotReply bool     `json:"useDoNotReply,omitempty"`
	CourseID      string   `json:"courseId,omitempty"`
	CourseName    string   `json:"courseName,omitempty"`
}

// SenderIdentity is the identity a batch is sent as.
type SenderIdentity struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// DispatchBatch is an ordered recipient list plus the sender identity.
type DispatchBatch struct {
	Recipients []RecipientSpec
	Sender     SenderIdentity
}

// DispatchResult is the structured result returned to the dispatch caller.
type DispatchResult struct {
	Success         bool      `json:"success"`
	Timestamp       time.Time `json:"timestamp"`
	SuccessfulCount int       `json:"successfulCount"`
	FailedCount     int       `json:"failedCount"`
	InvalidEmails   []string  `json:"invalidEmails,omitempty"`
}
