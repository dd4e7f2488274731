package tasks

import (
	"strings"

	"github.com/desertthunder/plexlist/internal/models"
)

// Matches reports whether item satisfies filter.
//
// A keyword hits when it occurs, ignoring case, in the item's summary or title.
// Under [models.ModeAny] the first hit decides; under [models.ModeAll] the first miss does.
// An empty keyword list never matches under ModeAny and always matches under ModeAll.
func Matches(item models.Item, filter models.Filter) bool {
	summary := strings.ToLower(item.Summary)
	title := strings.ToLower(item.Title)

	for _, kw := range filter.Keywords {
		kw = strings.ToLower(kw)
		hit := strings.Contains(summary, kw) || strings.Contains(title, kw)

		switch {
		case hit && filter.Mode != models.ModeAll:
			return true
		case !hit && filter.Mode == models.ModeAll:
			return false
		}
	}

	return filter.Mode == models.ModeAll
}
