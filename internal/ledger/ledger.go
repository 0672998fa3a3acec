// Package ledger records which calendar days a habit was marked done.
package ledger

import (
	"encoding/json"
	"sort"

	"github.com/julianstephens/habithero/internal/datekey"
)

// Ledger is an immutable set of completed calendar days. The zero value is
// an empty ledger ready to use.
type Ledger struct {
	days map[datekey.Key]struct{}
}

// Day is one cell of a calendar window.
type Day struct {
	Key  datekey.Key
	Done bool
}

// New returns a ledger holding keys.
func New(keys ...datekey.Key) Ledger {
	days := make(map[datekey.Key]struct{}, len(keys))
	for _, k := range keys {
		days[k] = struct{}{}
	}
	return Ledger{days: days}
}

// FromStrings validates raw day strings read from a store. Duplicates collapse.
func FromStrings(raw []string) (Ledger, error) {
	keys := make([]datekey.Key, 0, len(raw))
	for _, s := range raw {
		k, err := datekey.Parse(s)
		if err != nil {
			return Ledger{}, err
		}
		keys = append(keys, k)
	}
	return New(keys...), nil
}

// FromMap validates a document-shaped completion map. Entries set to false
// are not completions and are dropped.
func FromMap(raw map[string]bool) (Ledger, error) {
	keys := make([]datekey.Key, 0, len(raw))
	for s, done := range raw {
		k, err := datekey.Parse(s)
		if err != nil {
			return Ledger{}, err
		}
		if done {
			keys = append(keys, k)
		}
	}
	return New(keys...), nil
}

// IsComplete reports whether k was marked done.
func (l Ledger) IsComplete(k datekey.Key) bool {
	_, ok := l.days[k]
	return ok
}

// MarkComplete returns a ledger that includes k and whether k was newly
// added. When k is already present the result equals l. l is not modified.
func (l Ledger) MarkComplete(k datekey.Key) (Ledger, bool) {
	if l.IsComplete(k) {
		return l, false
	}
	days := make(map[datekey.Key]struct{}, len(l.days)+1)
	for d := range l.days {
		days[d] = struct{}{}
	}
	days[k] = struct{}{}
	return Ledger{days: days}, true
}

// Count returns the number of distinct completed days.
func (l Ledger) Count() int {
	return len(l.days)
}

// SortedKeys returns the completed days in ascending calendar order.
func (l Ledger) SortedKeys() []datekey.Key {
	keys := make([]datekey.Key, 0, len(l.days))
	for k := range l.days {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })
	return keys
}

// Window returns the n days ending at end, oldest first.
func (l Ledger) Window(end datekey.Key, n int) []Day {
	if n <= 0 {
		return nil
	}
	out := make([]Day, n)
	for i := 0; i < n; i++ {
		k := datekey.AddDays(end, i-(n-1))
		out[i] = Day{Key: k, Done: l.IsComplete(k)}
	}
	return out
}

// Equal reports whether both ledgers hold the same days.
func (l Ledger) Equal(o Ledger) bool {
	if len(l.days) != len(o.days) {
		return false
	}
	for k := range l.days {
		if !o.IsComplete(k) {
			return false
		}
	}
	return true
}

// Strings returns the sorted days in YYYY-MM-DD form.
func (l Ledger) Strings() []string {
	keys := l.SortedKeys()
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.String()
	}
	return out
}

// ToMap returns the document-store shape {"YYYY-MM-DD": true}.
func (l Ledger) ToMap() map[string]bool {
	out := make(map[string]bool, len(l.days))
	for k := range l.days {
		out[k.String()] = true
	}
	return out
}

// MarshalJSON encodes the ledger in its document-store shape.
func (l Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.ToMap())
}

// UnmarshalJSON decodes and validates the document-store shape.
func (l *Ledger) UnmarshalJSON(b []byte) error {
	var raw map[string]bool
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	parsed, err := FromMap(raw)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
