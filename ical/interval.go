package ical

import (
	"strings"
	"time"
)

// How a range query matches an item's begin/end pair against the query
// window [start, stop).
type RangeMode string

const (
	// The item's begin falls within the window.
	ModeBegin RangeMode = "begin"
	// The item's end falls within the window.
	ModeEnd RangeMode = "end"
	// Both begin and end fall within the window. The default.
	ModeBoth RangeMode = "both"
	// Begin or end falls within the window.
	ModeAny RangeMode = "any"
	// The item's interval fully contains the window. Requires both bounds;
	// an open bound yields no matches.
	ModeInc RangeMode = "inc"
)

// Validate a mode token. The empty string selects ModeBoth.
func ParseRangeMode(token string) (RangeMode, error) {
	switch RangeMode(strings.ToLower(token)) {
	case "":
		return ModeBoth, nil
	case ModeBegin:
		return ModeBegin, nil
	case ModeEnd:
		return ModeEnd, nil
	case ModeBoth:
		return ModeBoth, nil
	case ModeAny:
		return ModeAny, nil
	case ModeInc:
		return ModeInc, nil
	default:
		return "", NewValidationError("invalid range mode", map[string]any{
			"mode": token,
		})
	}
}

// True when v lies in [start, stop). A zero bound is open.
func withinWindow(v, start, stop time.Time) bool {
	if !start.IsZero() && v.Before(start) {
		return false
	}
	if !stop.IsZero() && !v.Before(stop) {
		return false
	}
	return true
}

// Filter items by the window and mode, preserving order. span yields an
// item's (begin, end) pair.
func filterSpan[T any](items []T, span func(T) (time.Time, time.Time), start, stop time.Time, mode RangeMode) ([]T, error) {
	if mode == "" {
		mode = ModeBoth
	}
	if _, err := ParseRangeMode(string(mode)); err != nil {
		return nil, err
	}

	var matched []T
	for _, item := range items {
		begin, end := span(item)
		// date-less items have no interval to match
		if begin.IsZero() && end.IsZero() {
			continue
		}
		var keep bool
		switch mode {
		case ModeBegin:
			keep = withinWindow(begin, start, stop)
		case ModeEnd:
			keep = withinWindow(end, start, stop)
		case ModeBoth:
			keep = withinWindow(begin, start, stop) && withinWindow(end, start, stop)
		case ModeAny:
			keep = withinWindow(begin, start, stop) || withinWindow(end, start, stop)
		case ModeInc:
			if start.IsZero() || stop.IsZero() {
				keep = false
				break
			}
			keep = !begin.IsZero() && !begin.After(start) && stop.Before(end)
		}
		if keep {
			matched = append(matched, item)
		}
	}
	return matched, nil
}

// Items whose interval covers the instant (begin <= instant <= end).
func atInstant[T any](items []T, span func(T) (time.Time, time.Time), instant time.Time) []T {
	var matched []T
	for _, item := range items {
		begin, end := span(item)
		if begin.IsZero() && end.IsZero() {
			continue
		}
		if !begin.After(instant) && !end.Before(instant) {
			matched = append(matched, item)
		}
	}
	return matched
}

// The day window containing the instant: [midnight, next midnight).
func daySpan(instant time.Time) (time.Time, time.Time) {
	start := floorDay(instant)
	return start, start.AddDate(0, 0, 1)
}

// Items overlapping the given interval: anything the window touches in any
// mode, plus items that fully contain it, deduplicated by identity.
func concurrentSpan[T any](items []T, span func(T) (time.Time, time.Time), uid func(T) string, begin, end time.Time) []T {
	touching, _ := filterSpan(items, span, begin, end, ModeAny)

	seen := make(map[string]struct{}, len(touching))
	matched := make([]T, 0, len(touching))
	for _, item := range touching {
		if _, ok := seen[uid(item)]; ok {
			continue
		}
		seen[uid(item)] = struct{}{}
		matched = append(matched, item)
	}
	for _, item := range items {
		itemBegin, itemEnd := span(item)
		if itemBegin.IsZero() || itemEnd.IsZero() {
			continue
		}
		if itemBegin.Before(begin) && itemEnd.After(end) {
			if _, ok := seen[uid(item)]; ok {
				continue
			}
			seen[uid(item)] = struct{}{}
			matched = append(matched, item)
		}
	}
	return matched
}

// Union of two item sequences with later duplicates (by identity) dropped.
func dedupConcat[T any](a, b []T, uid func(T) string) []T {
	merged := make([]T, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, item := range a {
		if _, ok := seen[uid(item)]; ok {
			continue
		}
		seen[uid(item)] = struct{}{}
		merged = append(merged, item)
	}
	for _, item := range b {
		if _, ok := seen[uid(item)]; ok {
			continue
		}
		seen[uid(item)] = struct{}{}
		merged = append(merged, item)
	}
	return merged
}
