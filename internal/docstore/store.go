// Package docstore is the keyed document store backing tracking records
// and their denormalized copies: per-path get/set/update on JSON documents
// plus a single optimistic-concurrency transaction primitive.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no document exists at a path.
var ErrNotFound = errors.New("docstore: not found")

type Store interface {
	// Get unmarshals the document at path into dest. Returns ErrNotFound
	// when the path is empty.
	Get(ctx context.Context, path string, dest any) error

	// Set writes value at path, replacing any existing document.
	Set(ctx context.Context, path string, value any) error

	// Update merges fields into the document at path. A dotted key
	// ("recipients.a_ex_com") descends into nested objects, replacing
	// only the leaf field, so concurrent updates to different fields of
	// the same document both land. Writes to the same field are
	// unconditional: the field written last wins.
	Update(ctx context.Context, path string, fields map[string]any) error

	// RunTransaction read-modify-writes one path with optimistic
	// concurrency, retrying a bounded number of times when a concurrent
	// writer touches the path. update receives the current raw document
	// (nil when absent) and returns the replacement value.
	RunTransaction(ctx context.Context, path string, update func(current []byte) (any, error)) error
}

// applyFields merges fields into doc. Dotted keys descend into nested
// objects, creating intermediate objects as needed; only the leaf field
// is replaced.
func applyFields(doc map[string]any, fields map[string]any) {
	for key, value := range fields {
		parts := strings.Split(key, ".")
		m := doc
		for _, part := range parts[:len(parts)-1] {
			child, ok := m[part].(map[string]any)
			if !ok {
				child = make(map[string]any)
				m[part] = child
			}
			m = child
		}
		m[parts[len(parts)-1]] = value
	}
}

// Path builders for the documents this service owns.

func TrackingPath(emailID string) string {
	return "tracking:" + emailID
}

func InboxPath(recipientKey, emailID string) string {
	return fmt.Sprintf("inbox:%s:%s", recipientKey, emailID)
}

func SentPath(senderKey, emailID string) string {
	return fmt.Sprintf("sent:%s:%s", senderKey, emailID)
}

func NotificationPath(recipientKey, emailID string) string {
	return fmt.Sprintf("notification:%s:%s", recipientKey, emailID)
}

func CourseNotesPath(courseID string) string {
	return fmt.Sprintf("course:%s:student_notes", courseID)
}
