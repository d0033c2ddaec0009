package provider

// EmailAddress is a provider-side address with an optional display name.
type EmailAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Personalization addresses one message and carries the correlation
// custom arg that later webhook events echo back.
type Personalization struct {
	To         []EmailAddress    `json:"to"`
	Cc         []EmailAddress    `json:"cc,omitempty"`
	Bcc        []EmailAddress    `json:"bcc,omitempty"`
	Subject    string            `json:"subject"`
	CustomArgs map[string]string `json:"custom_args,omitempty"`
}

// Content is one body part; the provider requires text/plain before text/html.
type Content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type OpenTracking struct {
	Enable bool `json:"enable"`
}

type TrackingSettings struct {
	OpenTracking *OpenTracking `json:"open_tracking,omitempty"`
}

// MessageSpec is one provider-ready message. The send endpoint accepts an
// array of these in a single call.
type MessageSpec struct {
	Personalizations []Personalization `json:"personalizations"`
	From             EmailAddress      `json:"from"`
	ReplyTo          *EmailAddress     `json:"reply_to,omitempty"`
	Content          []Content         `json:"content"`
	TrackingSettings *TrackingSettings `json:"tracking_settings,omitempty"`
}

// CorrelationArg is the custom-arg key carrying the tracking record id.
const CorrelationArg = "emailId"
