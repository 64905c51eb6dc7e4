package fieldsync

import (
	"fmt"
	"strings"
)

// BuildQuery combines the optional deck-root and note-type filters into one
// AnkiConnect search string. Filters are AND-combined; with neither set the
// query matches every deck. A deck root includes its subdecks.
func BuildQuery(deckRoot, noteType string) string {
	var parts []string
	if noteType = strings.TrimSpace(noteType); noteType != "" {
		parts = append(parts, fmt.Sprintf("note:%q", noteType))
	}
	if deckRoot = strings.TrimSpace(deckRoot); deckRoot != "" {
		parts = append(parts, fmt.Sprintf("deck:%q", deckRoot+"*"))
	}
	if len(parts) == 0 {
		return "deck:*"
	}
	return strings.Join(parts, " ")
}
