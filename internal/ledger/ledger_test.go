package ledger

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habithero/internal/datekey"
	apperrors "github.com/julianstephens/habithero/internal/errors"
)

func keys(t *testing.T, days ...string) []datekey.Key {
	t.Helper()
	out := make([]datekey.Key, len(days))
	for i, d := range days {
		k, err := datekey.Parse(d)
		require.NoError(t, err)
		out[i] = k
	}
	return out
}

func TestMarkComplete(t *testing.T) {
	day := datekey.MustParse("2024-01-03")

	var empty Ledger
	assert.False(t, empty.IsComplete(day))

	marked, added := empty.MarkComplete(day)
	assert.True(t, added)
	assert.True(t, marked.IsComplete(day))
	assert.Equal(t, 1, marked.Count())

	// The receiver is left untouched.
	assert.False(t, empty.IsComplete(day))
	assert.Equal(t, 0, empty.Count())
}

func TestMarkCompleteIsIdempotent(t *testing.T) {
	l := New(keys(t, "2024-01-01", "2024-01-02")...)
	day := datekey.MustParse("2024-01-03")

	once, added := l.MarkComplete(day)
	require.True(t, added)

	twice, added := once.MarkComplete(day)
	assert.False(t, added)
	assert.True(t, twice.Equal(once))
	assert.Equal(t, 3, twice.Count())
}

func TestSortedKeys(t *testing.T) {
	l := New(keys(t, "2024-02-01", "2023-12-31", "2024-01-15", "2024-01-02")...)

	want := []string{"2023-12-31", "2024-01-02", "2024-01-15", "2024-02-01"}
	if diff := cmp.Diff(want, l.Strings()); diff != "" {
		t.Errorf("Strings() mismatch (-want +got):\n%s", diff)
	}

	sorted := l.SortedKeys()
	for i := 1; i < len(sorted); i++ {
		assert.True(t, sorted[i-1].Before(sorted[i]))
	}
}

func TestDuplicatesCollapse(t *testing.T) {
	l, err := FromStrings([]string{"2024-01-01", "2024-01-01", "2024-01-02"})
	require.NoError(t, err)
	assert.Equal(t, 2, l.Count())
}

func TestFromMap(t *testing.T) {
	t.Run("drops false entries", func(t *testing.T) {
		l, err := FromMap(map[string]bool{"2024-01-01": true, "2024-01-02": false})
		require.NoError(t, err)
		assert.Equal(t, 1, l.Count())
		assert.True(t, l.IsComplete(datekey.MustParse("2024-01-01")))
		assert.False(t, l.IsComplete(datekey.MustParse("2024-01-02")))
	})

	t.Run("rejects malformed keys", func(t *testing.T) {
		_, err := FromMap(map[string]bool{"Tue Jan 02 2024": true})
		assert.ErrorIs(t, err, apperrors.ErrInvalidDateKey)
	})

	t.Run("nil map is empty", func(t *testing.T) {
		l, err := FromMap(nil)
		require.NoError(t, err)
		assert.Equal(t, 0, l.Count())
	})
}

func TestFromStringsRejectsMalformedKeys(t *testing.T) {
	_, err := FromStrings([]string{"2024-01-01", "2024-02-30"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateKey)
}

func TestWindow(t *testing.T) {
	l := New(keys(t, "2024-01-01", "2024-01-03")...)

	window := l.Window(datekey.MustParse("2024-01-03"), 4)
	require.Len(t, window, 4)

	var got []string
	var done []bool
	for _, d := range window {
		got = append(got, d.Key.String())
		done = append(done, d.Done)
	}
	if diff := cmp.Diff([]string{"2023-12-31", "2024-01-01", "2024-01-02", "2024-01-03"}, got); diff != "" {
		t.Errorf("Window() days mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]bool{false, true, false, true}, done); diff != "" {
		t.Errorf("Window() done flags mismatch (-want +got):\n%s", diff)
	}

	assert.Nil(t, l.Window(datekey.MustParse("2024-01-03"), 0))
}

func TestJSONDocumentShape(t *testing.T) {
	l := New(keys(t, "2024-01-02", "2024-01-01")...)

	out, err := json.Marshal(l)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2024-01-01":true,"2024-01-02":true}`, string(out))

	var decoded Ledger
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.True(t, decoded.Equal(l))

	err = json.Unmarshal([]byte(`{"not-a-day":true}`), &decoded)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDateKey)
}
