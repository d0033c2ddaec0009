package model

// WebhookEvent is one untrusted delivery-status callback from the provider.
// Every field is optional on the wire; consumers must check presence.
type WebhookEvent struct {
	Email       string `json:"email,omitempty"`
	Timestamp   int64  `json:"timestamp,omitempty"` // unix seconds
	Event       string `json:"event,omitempty"`
	SGMessageID string `json:"sg_message_id,omitempty"`
	EmailID     string `json:"emailId,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Status      string `json:"status,omitempty"`
	IP          string `json:"ip,omitempty"`
	UserAgent   string `json:"useragent,omitempty"`
	Response    string `json:"response,omitempty"`
}

// eventStatus is the fixed provider-event to internal-status table. Events
// outside this table are dropped by the reconciler.
var eventStatus = map[string]string{
	"processed": StatusSent,
	"delivered": StatusDelivered,
	"bounce":    StatusFailed,
	"dropped":   StatusFailed,
	"open":      StatusOpened,
}

// MapEventStatus maps a provider event type to the internal status.
// ok is false for event types outside the allow-list.
func MapEventStatus(event string) (status string, ok bool) {
	status, ok = eventStatus[event]
	return status, ok
}
