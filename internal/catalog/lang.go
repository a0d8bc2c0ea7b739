package catalog

import (
	"strings"

	"github.com/zulandar/evodex/internal/models"
)

// Languages is the fixed two-step fallback order for localized text.
type Languages struct {
	Preferred string
	Secondary string
}

// Pick returns the requested field of the first entry in the preferred
// language, else the first in the secondary language, else the sentinel.
// Entries with an empty value are treated as absent.
func (l Languages) Pick(entries []LocalizedName, f Field) string {
	if v := firstIn(entries, l.Preferred, f); v != "" {
		return v
	}
	if v := firstIn(entries, l.Secondary, f); v != "" {
		return v
	}
	return models.NotAvailable
}

// FlavorText returns the first preferred-language description with line and
// form feeds flattened to spaces, or "" when there is none.
func (l Languages) FlavorText(entries []LocalizedName) string {
	v := firstIn(entries, l.Preferred, FieldFlavorText)
	return strings.NewReplacer("\n", " ", "\f", " ").Replace(v)
}

func firstIn(entries []LocalizedName, lang string, f Field) string {
	for _, e := range entries {
		if e.Language.Name == lang {
			if v := e.text(f); v != "" {
				return v
			}
		}
	}
	return ""
}
