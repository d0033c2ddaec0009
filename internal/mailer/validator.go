package mailer

import (
	"regexp"
	"strings"

	"mail-dispatch-service/internal/model"
)

var emailPattern = regexp.MustCompile(`^[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`)

// ValidationOutcome splits a recipient list into the specs that may be
// dispatched and the addresses that were rejected.
type ValidationOutcome struct {
	Valid   []model.RecipientSpec
	Invalid []string
}

// ValidateRecipients normalizes (trim + lowercase) every to/cc/bcc address
// and filters out malformed ones. A malformed address never blocks the
// rest of the batch: a bad `to` drops only that recipient, a bad cc/bcc
// entry drops only that entry. Rejected addresses are reported verbatim.
func ValidateRecipients(specs []model.RecipientSpec) ValidationOutcome {
	out := ValidationOutcome{}

	for _, spec := range specs {
		to := normalize(spec.To)
		if !IsValidEmail(to) {
			out.Invalid = append(out.Invalid, spec.To)
			continue
		}
		spec.To = to

		spec.Cc, out.Invalid = filterAddresses(spec.Cc, out.Invalid)
		spec.Bcc, out.Invalid = filterAddresses(spec.Bcc, out.Invalid)

		out.Valid = append(out.Valid, spec)
	}

	return out
}

// IsValidEmail reports whether addr has a standard local@domain shape.
// addr is expected to be normalized already.
func IsValidEmail(addr string) bool {
	return emailPattern.MatchString(addr)
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}

func filterAddresses(addrs []string, invalid []string) ([]string, []string) {
	if len(addrs) == 0 {
		return nil, invalid
	}

	kept := make([]string, 0, len(addrs))
	for _, raw := range addrs {
		addr := normalize(raw)
		if IsValidEmail(addr) {
			kept = append(kept, addr)
		} else {
			invalid = append(invalid, raw)
		}
	}
	if len(kept) == 0 {
		return nil, invalid
	}
	return kept, invalid
}
