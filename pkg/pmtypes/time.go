package pmtypes

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidDuration is returned for malformed ISO 8601 durations.
var ErrInvalidDuration = errors.New("invalid duration")

// Timestamp is a point in time in milliseconds since the Unix epoch.
// The zero value means "not set".
type Timestamp uint64

// Now returns the current time as a Timestamp.
func Now() Timestamp {
	return TimestampOf(time.Now())
}

// TimestampOf converts t.
func TimestampOf(t time.Time) Timestamp {
	return Timestamp(t.UnixMilli())
}

// Time converts ts back to a time.Time in UTC.
func (ts Timestamp) Time() time.Time {
	return time.UnixMilli(int64(ts)).UTC()
}

// IsZero reports whether ts is unset.
func (ts Timestamp) IsZero() bool {
	return ts == 0
}

// FormatDuration renders d as an ISO 8601 duration limited to days, hours,
// minutes and (fractional) seconds, e.g. "PT1M30.5S".
func FormatDuration(d time.Duration) string {
	if d == 0 {
		return "PT0S"
	}
	var b strings.Builder
	if d < 0 {
		b.WriteByte('-')
		d = -d
	}
	b.WriteByte('P')
	days := d / (24 * time.Hour)
	d -= days * 24 * time.Hour
	if days > 0 {
		fmt.Fprintf(&b, "%dD", days)
	}
	if d == 0 {
		return b.String()
	}
	b.WriteByte('T')
	hours := d / time.Hour
	d -= hours * time.Hour
	minutes := d / time.Minute
	d -= minutes * time.Minute
	if hours > 0 {
		fmt.Fprintf(&b, "%dH", hours)
	}
	if minutes > 0 {
		fmt.Fprintf(&b, "%dM", minutes)
	}
	if d > 0 {
		b.WriteString(strconv.FormatFloat(d.Seconds(), 'f', -1, 64))
		b.WriteByte('S')
	}
	return b.String()
}

// ParseDuration parses an ISO 8601 duration. Years and months are rejected
// because their length is not fixed.
func ParseDuration(s string) (time.Duration, error) {
	orig := s
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") || len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, orig)
	}
	s = s[1:]

	var total float64
	inTime := false
	for len(s) > 0 {
		if s[0] == 'T' {
			if inTime {
				return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, orig)
			}
			inTime = true
			s = s[1:]
			continue
		}
		i := strings.IndexAny(s, "YMWDHS")
		if i <= 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, orig)
		}
		n, err := strconv.ParseFloat(s[:i], 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, orig)
		}
		var unit time.Duration
		switch {
		case s[i] == 'W' && !inTime:
			unit = 7 * 24 * time.Hour
		case s[i] == 'D' && !inTime:
			unit = 24 * time.Hour
		case s[i] == 'H' && inTime:
			unit = time.Hour
		case s[i] == 'M' && inTime:
			unit = time.Minute
		case s[i] == 'S' && inTime:
			unit = time.Second
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidDuration, orig)
		}
		total += n * float64(unit)
		s = s[i+1:]
	}
	if total > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %q overflows", ErrInvalidDuration, orig)
	}
	d := time.Duration(math.Round(total))
	if neg {
		d = -d
	}
	return d, nil
}
