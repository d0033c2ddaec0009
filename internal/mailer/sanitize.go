package mailer

import "strings"

// SanitizeKey maps an email address to a storage-safe key: lowercased,
// with every character outside [a-z0-9] replaced by '_'. The transform is
// deterministic and idempotent but not reversible.
func SanitizeKey(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	var b strings.Builder
	b.Grow(len(email))
	for _, r := range email {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
