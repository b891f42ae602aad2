package ical

import (
	"hash/fnv"

	"github.com/google/uuid"
)

// Produces a fresh process-unique identifier. Swappable so tests and callers
// with their own naming scheme can inject one.
type UIDGen func() string

var uidGen UIDGen = uuid.NewString

// Replace the generator used for events, todos, and calendars whose UID was
// never set. Passing nil restores the uuid-based default.
func SetUIDGen(gen UIDGen) {
	if gen == nil {
		uidGen = uuid.NewString
		return
	}
	uidGen = gen
}

// Hash of an identity string, consistent with uid-based equality.
func hashUID(uid string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(uid))
	return h.Sum64()
}
