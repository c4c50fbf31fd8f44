package class

import "strings"

type Kind string

const (
	KindStrength Kind = "strength"
	KindCardio   Kind = "cardio"
	KindMobility Kind = "mobility"
)

// Catalogs carry a mix of Spanish and English copy, so both spellings are
// matched.
var (
	mobilityKeywords = []string{"movilidad", "mobility", "yoga", "pilates", "stretch", "estira"}
	cardioKeywords   = []string{"cardio", "hiit", "spinning", "cycle", "running", "zumba"}
)

// InferKind classifies a class from its free text. Mobility keywords win
// over cardio; everything else is strength. The text is editable by admin
// flows at any time, so the result is recomputed on every call rather than
// cached.
func InferKind(title, description string) Kind {
	text := strings.ToLower(title + " " + description)

	for _, kw := range mobilityKeywords {
		if strings.Contains(text, kw) {
			return KindMobility
		}
	}

	for _, kw := range cardioKeywords {
		if strings.Contains(text, kw) {
			return KindCardio
		}
	}

	return KindStrength
}
