package moderation

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Duration is a parsed, strictly positive span with explicit start and end times.
type Duration struct {
	Length time.Duration
	Start  time.Time
	End    time.Time
}

var errDurationTooLong = &ValidationError{Field: "duration", Message: "duration is too long"}

var durationPartRe = regexp.MustCompile(`(\d+)\s*([a-z]+)`)

var durationUnits = map[string]time.Duration{
	"s": time.Second, "sec": time.Second, "secs": time.Second, "second": time.Second, "seconds": time.Second,
	"m": time.Minute, "min": time.Minute, "mins": time.Minute, "minute": time.Minute, "minutes": time.Minute,
	"h": time.Hour, "hr": time.Hour, "hrs": time.Hour, "hour": time.Hour, "hours": time.Hour,
	"d": 24 * time.Hour, "day": 24 * time.Hour, "days": 24 * time.Hour,
	"w": 7 * 24 * time.Hour, "week": 7 * 24 * time.Hour, "weeks": 7 * 24 * time.Hour,
}

// NewDuration builds a Duration of the given length starting at start.
func NewDuration(length time.Duration, start time.Time) (Duration, error) {
	d := Duration{Length: length, Start: start, End: start.Add(length)}
	if err := d.Validate(); err != nil {
		return Duration{}, err
	}
	return d, nil
}

// ParseDuration parses text such as "24h", "7d" or "1w 2d 3h" relative to now.
func ParseDuration(text string, now time.Time) (Duration, error) {
	raw := strings.ToLower(strings.TrimSpace(text))
	if raw == "" {
		return Duration{}, &ValidationError{Field: "duration", Message: "duration is required"}
	}

	if d, err := time.ParseDuration(raw); err == nil {
		return NewDuration(d, now)
	}

	matches := durationPartRe.FindAllStringSubmatchIndex(raw, -1)
	if len(matches) == 0 {
		return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("cannot parse %q", text)}
	}

	var total time.Duration
	consumed := 0
	for _, m := range matches {
		if strings.TrimSpace(raw[consumed:m[0]]) != "" {
			return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("cannot parse %q", text)}
		}
		n, err := strconv.ParseInt(raw[m[2]:m[3]], 10, 64)
		if err != nil {
			return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("invalid number in %q", text)}
		}
		unit, ok := durationUnits[raw[m[4]:m[5]]]
		if !ok {
			return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("unknown unit %q", raw[m[4]:m[5]])}
		}
		if n > int64(math.MaxInt64/unit) {
			return Duration{}, errDurationTooLong
		}
		step := time.Duration(n) * unit
		if total > math.MaxInt64-step {
			return Duration{}, errDurationTooLong
		}
		total += step
		consumed = m[1]
	}
	if strings.TrimSpace(raw[consumed:]) != "" {
		return Duration{}, &ValidationError{Field: "duration", Message: fmt.Sprintf("cannot parse %q", text)}
	}

	return NewDuration(total, now)
}

// Validate checks the duration is strictly positive and ends after it starts.
func (d Duration) Validate() error {
	if d.Length <= 0 {
		return &ValidationError{Field: "duration", Message: "duration must be positive"}
	}
	if !d.End.After(d.Start) {
		return &ValidationError{Field: "duration", Message: "end time must be after start time"}
	}
	return nil
}

// String renders the length as e.g. "1w 2d 3h".
func (d Duration) String() string {
	left := d.Length
	if left < time.Minute {
		return fmt.Sprintf("%ds", int64(left/time.Second))
	}

	parts := make([]string, 0, 4)
	for _, u := range []struct {
		size  time.Duration
		label string
	}{
		{7 * 24 * time.Hour, "w"},
		{24 * time.Hour, "d"},
		{time.Hour, "h"},
		{time.Minute, "m"},
	} {
		if n := left / u.size; n > 0 {
			parts = append(parts, fmt.Sprintf("%d%s", n, u.label))
			left -= n * u.size
		}
	}
	return strings.Join(parts, " ")
}
