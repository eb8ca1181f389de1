package resolver

import (
	"strings"

	"github.com/sentiric/sentiric-contact-resolver/internal/directory"
	"github.com/sentiric/sentiric-contact-resolver/internal/l10n"
)

// PrimaryInfo picks the string to show for a record: the first name, else
// the first email, else the first phone number, trimmed. It reports false for
// a nil record or one with none of the three.
func PrimaryInfo(rec *directory.Record) (string, bool) {
	if rec == nil {
		return "", false
	}
	for _, entries := range [][]directory.Entry{rec.Name, rec.Email, rec.Tel} {
		if v, ok := firstValue(entries); ok {
			return v, true
		}
	}
	return "", false
}

// PrettyPrimaryInfo is PrimaryInfo with the localized "unknown" label for
// records that have nothing to show.
func PrettyPrimaryInfo(rec *directory.Record, loc l10n.Localizer) string {
	if v, ok := PrimaryInfo(rec); ok {
		return v
	}
	if loc == nil {
		return l10n.KeyUnknown
	}
	return loc.Get(l10n.KeyUnknown)
}

func firstValue(entries []directory.Entry) (string, bool) {
	if len(entries) == 0 {
		return "", false
	}
	v := strings.TrimSpace(entries[0].Value)
	return v, v != ""
}
