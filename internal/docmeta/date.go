package docmeta

import (
	"time"

	"golang.org/x/text/language"
)

var (
	dateLocales = []language.Tag{
		language.Und,
		language.English,
		language.BritishEnglish,
		language.French,
		language.German,
		language.Spanish,
		language.Italian,
		language.Dutch,
		language.Portuguese,
	}
	dateLayouts = []string{
		"2006-01-02",
		"1/2/2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
		"02/01/2006",
	}
	dateMatcher = language.NewMatcher(dateLocales)
)

// FormatDate renders a Unix timestamp as a short UTC date for locale.
// Unknown or unparsable locales fall back to ISO 8601.
func FormatDate(locale string, unix int64) string {
	layout := dateLayouts[0]
	if tag, err := language.Parse(locale); err == nil {
		if _, idx, conf := dateMatcher.Match(tag); conf != language.No {
			layout = dateLayouts[idx]
		}
	}
	return time.Unix(unix, 0).UTC().Format(layout)
}
