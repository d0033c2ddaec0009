package docstore

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	type doc struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	var missing doc
	assert.ErrorIs(t, store.Get(ctx, "nope", &missing), ErrNotFound)

	require.NoError(t, store.Set(ctx, "d:1", doc{Name: "a", Count: 1}))

	var got doc
	require.NoError(t, store.Get(ctx, "d:1", &got))
	assert.Equal(t, doc{Name: "a", Count: 1}, got)

	// Set replaces, not merges
	require.NoError(t, store.Set(ctx, "d:1", doc{Name: "b"}))
	require.NoError(t, store.Get(ctx, "d:1", &got))
	assert.Equal(t, doc{Name: "b", Count: 0}, got)
}

func TestMemoryStoreUpdate(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	assert.ErrorIs(t, store.Update(ctx, "nope", map[string]any{"a": 1}), ErrNotFound)

	require.NoError(t, store.Set(ctx, "d:1", map[string]any{"status": "sent", "subject": "S"}))
	require.NoError(t, store.Update(ctx, "d:1", map[string]any{"status": "delivered"}))

	var got map[string]any
	require.NoError(t, store.Get(ctx, "d:1", &got))
	assert.Equal(t, "delivered", got["status"])
	assert.Equal(t, "S", got["subject"], "untouched fields survive an update")
}

func TestMemoryStoreUpdateNestedField(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Set(ctx, "d:1", map[string]any{
		"subject": "S",
		"recipients": map[string]any{
			"a_ex_com": map[string]any{"status": "sent"},
			"c_ex_com": map[string]any{"status": "sent"},
		},
	}))

	// A dotted key replaces only its leaf; sibling entries survive.
	require.NoError(t, store.Update(ctx, "d:1", map[string]any{
		"recipients.a_ex_com": map[string]any{"status": "opened"},
	}))

	var got map[string]any
	require.NoError(t, store.Get(ctx, "d:1", &got))
	recipients := got["recipients"].(map[string]any)
	assert.Equal(t, "opened", recipients["a_ex_com"].(map[string]any)["status"])
	assert.Equal(t, "sent", recipients["c_ex_com"].(map[string]any)["status"])
	assert.Equal(t, "S", got["subject"])
}

func TestMemoryStoreRunTransaction(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	appendOne := func(n int) error {
		return store.RunTransaction(ctx, "notes", func(current []byte) (any, error) {
			var notes []int
			if current != nil {
				if err := json.Unmarshal(current, &notes); err != nil {
					return nil, err
				}
			}
			return append(notes, n), nil
		})
	}

	require.NoError(t, appendOne(1))
	require.NoError(t, appendOne(2))
	require.NoError(t, appendOne(3))

	var notes []int
	require.NoError(t, store.Get(ctx, "notes", &notes))
	assert.Equal(t, []int{1, 2, 3}, notes)
}

func TestPathBuilders(t *testing.T) {
	assert.Equal(t, "tracking:id-1", TrackingPath("id-1"))
	assert.Equal(t, "inbox:a_ex_com:id-1", InboxPath("a_ex_com", "id-1"))
	assert.Equal(t, "sent:t_school_edu:id-1", SentPath("t_school_edu", "id-1"))
	assert.Equal(t, "notification:a_ex_com:id-1", NotificationPath("a_ex_com", "id-1"))
	assert.Equal(t, "course:c1:student_notes", CourseNotesPath("c1"))
}
