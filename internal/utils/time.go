package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"

	"github.com/julianstephens/habithero/internal/datekey"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return loc, nil
}

// ParseDay reads a calendar day relative to now. It accepts YYYY-MM-DD,
// "today", and natural language such as "yesterday" or "last friday".
func ParseDay(input string, now time.Time) (datekey.Key, error) {
	input = strings.TrimSpace(input)
	switch strings.ToLower(input) {
	case "", "today", "now":
		return datekey.Today(now), nil
	}

	if k, err := datekey.Parse(input); err == nil {
		return k, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return datekey.Key{}, fmt.Errorf("could not understand date %q: %w", input, err)
	}
	return datekey.KeyFor(result.Time.In(now.Location())), nil
}
