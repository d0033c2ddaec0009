package mailer

import (
	"github.com/google/uuid"

	"mail-dispatch-service/internal/model"
	"mail-dispatch-service/internal/provider"
)

const (
	textNotice = "\n\n--\nThis mailbox is not monitored. Please do not reply to this message."
	htmlNotice = "<br><br><p style=\"color:#888\">This mailbox is not monitored. Please do not reply to this message.</p>"
)

// Builder turns validated recipient specs into provider-ready message
// specs, one per recipient, each with a fresh emailId.
type Builder struct {
	doNotReply model.SenderIdentity
}

func NewBuilder(doNotReply model.SenderIdentity) *Builder {
	return &Builder{doNotReply: doNotReply}
}

// BuiltMessage pairs a message spec with its correlation id and the
// recipient spec it was built from. Build preserves input order, so the
// i-th built message always corresponds to the i-th valid recipient.
type BuiltMessage struct {
	EmailID   string
	Spec      provider.MessageSpec
	Recipient model.RecipientSpec
	Sender    model.SenderIdentity
}

// Build constructs one provider message per recipient spec. When the spec
// asks for a no-reply send the fixed do-not-reply identity is used and a
// static notice is appended to both bodies; otherwise the caller identity
// is used and reply-to is set to it.
func (b *Builder) Build(batch model.DispatchBatch) []BuiltMessage {
	built := make([]BuiltMessage, 0, len(batch.Recipients))

	for _, spec := range batch.Recipients {
		emailID := uuid.NewString()

		sender := batch.Sender
		html := spec.HTML
		text := spec.Text
		var replyTo *provider.EmailAddress

		if spec.UseDoNotReply {
			sender = b.doNotReply
			if html != "" {
				html += htmlNotice
			}
			if text != "" {
				text += textNotice
			}
		} else {
			replyTo = &provider.EmailAddress{Email: batch.Sender.Email, Name: batch.Sender.Name}
		}

		msg := provider.MessageSpec{
			Personalizations: []provider.Personalization{{
				To:         []provider.EmailAddress{{Email: spec.To}},
				Cc:         toAddresses(spec.Cc),
				Bcc:        toAddresses(spec.Bcc),
				Subject:    spec.Subject,
				CustomArgs: map[string]string{provider.CorrelationArg: emailID},
			}},
			From:    provider.EmailAddress{Email: sender.Email, Name: sender.Name},
			ReplyTo: replyTo,
			TrackingSettings: &provider.TrackingSettings{
				OpenTracking: &provider.OpenTracking{Enable: true},
			},
		}

		// text/plain must precede text/html
		if text != "" {
			msg.Content = append(msg.Content, provider.Content{Type: "text/plain", Value: text})
		}
		if html != "" {
			msg.Content = append(msg.Content, provider.Content{Type: "text/html", Value: html})
		}

		built = append(built, BuiltMessage{
			EmailID:   emailID,
			Spec:      msg,
			Recipient: spec,
			Sender:    sender,
		})
	}

	return built
}

func toAddresses(addrs []string) []provider.EmailAddress {
	if len(addrs) == 0 {
		return nil
	}
	out := make([]provider.EmailAddress, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, provider.EmailAddress{Email: a})
	}
	return out
}
