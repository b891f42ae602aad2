package ical

import (
	"fmt"
	"strings"
	"time"
)

// How much of an instant is meaningful. Events created through SetBegin have
// second precision; MakeAllDay degrades them to day precision.
type Precision int

const (
	PrecisionSecond Precision = iota
	PrecisionDay
)

// One unit at this precision, added to a begin to derive the effective end
// of an item that stores neither end nor duration.
func (p Precision) unit(t time.Time) time.Time {
	if p == PrecisionDay {
		return t.AddDate(0, 0, 1)
	}
	return t.Add(time.Second)
}

const (
	icalDateTimeUTCLayout   = "20060102T150405Z"
	icalDateTimeLocalLayout = "20060102T150405"
	icalDateLayout          = "20060102"
)

// Parse the date-time value of a content line.
//
//   - `DTSTART:19970714T133000Z` — UTC
//   - `DTSTART;TZID=Europe/Paris:19970714T133000` — zoned, looked up in tz
//   - `DTSTART;VALUE=DATE:19970714` — date only, day precision
//
// tz maps timezone identifiers collected from VTIMEZONE blocks; identifiers
// not in the map fall back to the IANA database. The returned instant is
// normalized to UTC.
func parseInstantLine(line *ContentLine, tz map[string]*time.Location) (time.Time, Precision, error) {
	value := strings.TrimSpace(line.Value)
	if value == "" {
		return time.Time{}, PrecisionSecond, NewParseError("empty date-time value", map[string]any{
			"name": line.Name,
		})
	}

	if len(value) == len(icalDateLayout) {
		parsed, err := time.Parse(icalDateLayout, value)
		if err != nil {
			return time.Time{}, PrecisionSecond, NewParseError("invalid date value", map[string]any{
				"name":  line.Name,
				"value": value,
				"err":   err,
			})
		}
		return parsed.UTC(), PrecisionDay, nil
	}

	if strings.HasSuffix(value, "Z") {
		parsed, err := time.Parse(icalDateTimeUTCLayout, value)
		if err != nil {
			return time.Time{}, PrecisionSecond, NewParseError("invalid UTC date-time value", map[string]any{
				"name":  line.Name,
				"value": value,
				"err":   err,
			})
		}
		return parsed.UTC(), PrecisionSecond, nil
	}

	location := time.UTC
	if tzid := line.ParamValue("TZID"); tzid != "" {
		loc, ok := tz[tzid]
		if !ok {
			var err error
			loc, err = time.LoadLocation(tzid)
			if err != nil {
				return time.Time{}, PrecisionSecond, NewParseError("unknown TZID", map[string]any{
					"name": line.Name,
					"tzid": tzid,
					"err":  err,
				})
			}
		}
		location = loc
	}

	parsed, err := time.ParseInLocation(icalDateTimeLocalLayout, value, location)
	if err != nil {
		return time.Time{}, PrecisionSecond, NewParseError("invalid date-time value", map[string]any{
			"name":  line.Name,
			"value": value,
			"err":   err,
		})
	}
	return parsed.UTC(), PrecisionSecond, nil
}

// Parse a bare instant string: RFC 3339 or one of the iCalendar layouts.
// This is the single conversion point for date-like strings accepted at the
// API surface.
func ParseInstant(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02",
		icalDateTimeUTCLayout,
		icalDateTimeLocalLayout,
		icalDateLayout,
	} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, NewParseError("unrecognized instant", map[string]any{
		"value": value,
	})
}

// Render an instant in the UTC iCalendar layout.
func formatInstant(t time.Time) string {
	return t.UTC().Format(icalDateTimeUTCLayout)
}

// Parse an ISO-8601 duration: [-]P[nW][nD][T[nH][nM][nS]].
func ParseICalDuration(value string) (time.Duration, error) {
	original := value
	value = strings.TrimSpace(value)
	negative := false
	switch {
	case strings.HasPrefix(value, "-"):
		negative = true
		value = value[1:]
	case strings.HasPrefix(value, "+"):
		value = value[1:]
	}
	if !strings.HasPrefix(value, "P") {
		return 0, NewParseError("duration must start with 'P'", map[string]any{
			"value": original,
		})
	}
	value = value[1:]

	var total time.Duration
	inTime := false
	number := 0
	haveNumber := false
	haveComponent := false
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			number = number*10 + int(r-'0')
			haveNumber = true
		case r == 'T' && !inTime && !haveNumber:
			inTime = true
		default:
			if !haveNumber {
				return 0, NewParseError("duration designator without a number", map[string]any{
					"value": original,
				})
			}
			var unit time.Duration
			switch {
			case r == 'W' && !inTime:
				unit = 7 * 24 * time.Hour
			case r == 'D' && !inTime:
				unit = 24 * time.Hour
			case r == 'H' && inTime:
				unit = time.Hour
			case r == 'M' && inTime:
				unit = time.Minute
			case r == 'S' && inTime:
				unit = time.Second
			default:
				return 0, NewParseError("unexpected duration designator", map[string]any{
					"value":      original,
					"designator": string(r),
				})
			}
			total += time.Duration(number) * unit
			number = 0
			haveNumber = false
			haveComponent = true
		}
	}
	if haveNumber || !haveComponent {
		return 0, NewParseError("incomplete duration", map[string]any{
			"value": original,
		})
	}
	if negative {
		total = -total
	}
	return total, nil
}

// Render a duration in the ISO-8601 layout used by iCalendar.
func FormatICalDuration(d time.Duration) string {
	var sb strings.Builder
	if d < 0 {
		sb.WriteByte('-')
		d = -d
	}
	sb.WriteByte('P')

	days := int(d / (24 * time.Hour))
	d -= time.Duration(days) * 24 * time.Hour
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	seconds := int(d / time.Second)

	if days > 0 {
		fmt.Fprintf(&sb, "%dD", days)
	}
	if hours > 0 || minutes > 0 || seconds > 0 {
		sb.WriteByte('T')
		if hours > 0 {
			fmt.Fprintf(&sb, "%dH", hours)
		}
		if minutes > 0 {
			fmt.Fprintf(&sb, "%dM", minutes)
		}
		if seconds > 0 {
			fmt.Fprintf(&sb, "%dS", seconds)
		}
	}
	if sb.Len() <= 2 { // zero duration, "P" or "-P" so far
		return "PT0S"
	}
	return sb.String()
}

// A structured calendar offset applied by the bump operations. Days shift by
// calendar arithmetic; the clock components shift by absolute duration.
type Shift struct {
	Weeks   int
	Days    int
	Hours   int
	Minutes int
	Seconds int
}

// Apply the shift to an instant.
func (s Shift) Apply(t time.Time) time.Time {
	t = t.AddDate(0, 0, s.Weeks*7+s.Days)
	return t.Add(time.Duration(s.Hours)*time.Hour +
		time.Duration(s.Minutes)*time.Minute +
		time.Duration(s.Seconds)*time.Second)
}

// True when the shift moves nothing.
func (s Shift) IsZero() bool {
	return s == Shift{}
}

// Truncate an instant to the start of its day.
func floorDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
