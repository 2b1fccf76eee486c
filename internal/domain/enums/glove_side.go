package enums

import "strings"

type GloveSide string

const (
	GloveSideLeft    GloveSide = "left"
	GloveSideRight   GloveSide = "right"
	GloveSideUnknown GloveSide = "unknown"
)

// ParseGloveSide maps a free-text side into the closed vocabulary.
// Unrecognized values become unknown rather than an error.
func ParseGloveSide(value string) GloveSide {
	switch GloveSide(strings.ToLower(strings.TrimSpace(value))) {
	case GloveSideLeft, GloveSideRight:
		return GloveSide(strings.ToLower(strings.TrimSpace(value)))
	default:
		return GloveSideUnknown
	}
}
