// Package datekey converts instants into calendar-day identifiers in the
// caller's local time zone and does day arithmetic on them.
package datekey

import (
	"fmt"
	"time"

	"github.com/julianstephens/habithero/internal/constants"
	apperrors "github.com/julianstephens/habithero/internal/errors"
)

// Key identifies a calendar day. Its text form is YYYY-MM-DD.
// The zero Key is not a valid day.
type Key struct {
	year  int
	month time.Month
	day   int
}

// Today returns the key for the calendar day now falls on in now's location.
func Today(now time.Time) Key {
	return KeyFor(now)
}

// KeyFor returns the calendar day t falls on in t's own location.
// Convert with t.In(loc) first to read the day in another zone.
func KeyFor(t time.Time) Key {
	y, m, d := t.Date()
	return Key{year: y, month: m, day: d}
}

// New builds a key from calendar fields, normalising overflow the way time.Date does.
func New(year int, month time.Month, day int) Key {
	return KeyFor(time.Date(year, month, day, 12, 0, 0, 0, time.UTC))
}

// Parse validates s as a YYYY-MM-DD calendar day.
func Parse(s string) (Key, error) {
	if !hasDateShape(s) {
		return Key{}, fmt.Errorf("%w: %q (expected YYYY-MM-DD)", apperrors.ErrInvalidDateKey, s)
	}
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return Key{}, fmt.Errorf("%w: %q: not a calendar date", apperrors.ErrInvalidDateKey, s)
	}
	return KeyFor(t), nil
}

// MustParse is Parse for literals known to be valid. It panics otherwise.
func MustParse(s string) Key {
	k, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return k
}

func hasDateShape(s string) bool {
	if len(s) != len(constants.DateFormat) {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch i {
		case 4, 7:
			if c != '-' {
				return false
			}
		default:
			if c < '0' || c > '9' {
				return false
			}
		}
	}
	return true
}

// Previous returns the calendar day immediately before k.
func Previous(k Key) Key {
	return AddDays(k, -1)
}

// AddDays returns the key n calendar days after k (before, for negative n).
func AddDays(k Key, n int) Key {
	return New(k.year, k.month, k.day+n)
}

// DaysBetween returns the signed number of calendar days from a to b,
// positive when b is later. It works on the date fields alone, so daylight
// saving transitions cannot shift the result.
func DaysBetween(a, b Key) int {
	return daysFromCivil(b.year, int(b.month), b.day) - daysFromCivil(a.year, int(a.month), a.day)
}

// daysFromCivil maps a proleptic Gregorian date to a day number
// (1970-01-01 is day 0).
func daysFromCivil(y, m, d int) int {
	if m <= 2 {
		y--
	}
	era := y / 400
	if y < 0 && y%400 != 0 {
		era--
	}
	yoe := y - era*400
	mp := (m + 9) % 12
	doy := (153*mp+2)/5 + d - 1
	doe := yoe*365 + yoe/4 - yoe/100 + doy
	return era*146097 + doe - 719468
}

// Year returns the calendar year.
func (k Key) Year() int { return k.year }

// Month returns the calendar month.
func (k Key) Month() time.Month { return k.month }

// Day returns the day of the month.
func (k Key) Day() int { return k.day }

// IsZero reports whether k is the zero Key.
func (k Key) IsZero() bool { return k == Key{} }

// Before reports whether k is an earlier day than o.
func (k Key) Before(o Key) bool { return k.Compare(o) < 0 }

// After reports whether k is a later day than o.
func (k Key) After(o Key) bool { return k.Compare(o) > 0 }

// Weekday returns the day of the week k falls on.
func (k Key) Weekday() time.Weekday {
	return k.Start(time.UTC).Weekday()
}

// Compare returns -1, 0 or +1 as k is before, equal to, or after o.
func (k Key) Compare(o Key) int {
	switch {
	case k.year != o.year:
		return cmpInt(k.year, o.year)
	case k.month != o.month:
		return cmpInt(int(k.month), int(o.month))
	default:
		return cmpInt(k.day, o.day)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Start returns local midnight of the day in loc.
func (k Key) Start(loc *time.Location) time.Time {
	return time.Date(k.year, k.month, k.day, 0, 0, 0, 0, loc)
}

func (k Key) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", k.year, int(k.month), k.day)
}

// MarshalText implements encoding.TextMarshaler.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler and rejects malformed days.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := Parse(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
