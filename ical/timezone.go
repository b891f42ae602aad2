package ical

import "time"

// Resolves a raw VTIMEZONE block into locations usable for interpreting
// zoned date-time values. Implementations map every timezone identifier the
// block defines to a *time.Location; the codec only ever consumes the
// returned table, keyed by TZID.
type TimezoneResolver interface {
	Resolve(block *Container) (map[string]*time.Location, error)
}

// The default resolver: it trusts the block's TZID to name an entry in the
// IANA database instead of interpreting the STANDARD/DAYLIGHT rules itself.
type IANATimezoneResolver struct{}

func (IANATimezoneResolver) Resolve(block *Container) (map[string]*time.Location, error) {
	line := block.Line("TZID")
	if line == nil {
		return nil, NewSchemaError("VTIMEZONE without TZID", nil)
	}
	location, err := time.LoadLocation(line.Value)
	if err != nil {
		return nil, NewParseError("TZID not in the IANA database", map[string]any{
			"tzid": line.Value,
			"err":  err,
		})
	}
	return map[string]*time.Location{line.Value: location}, nil
}
