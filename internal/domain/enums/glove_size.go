package enums

import "strings"

type GloveSize string

const (
	GloveSizeXS      GloveSize = "xs"
	GloveSizeS       GloveSize = "s"
	GloveSizeM       GloveSize = "m"
	GloveSizeL       GloveSize = "l"
	GloveSizeXL      GloveSize = "xl"
	GloveSizeUnknown GloveSize = "unknown"
)

// ParseGloveSize maps a free-text size into the closed vocabulary.
// Unrecognized values become unknown rather than an error.
func ParseGloveSize(value string) GloveSize {
	switch GloveSize(strings.ToLower(strings.TrimSpace(value))) {
	case GloveSizeXS, GloveSizeS, GloveSizeM, GloveSizeL, GloveSizeXL:
		return GloveSize(strings.ToLower(strings.TrimSpace(value)))
	default:
		return GloveSizeUnknown
	}
}
