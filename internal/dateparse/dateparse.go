// Package dateparse converts heterogeneous human-readable order dates into a
// canonical time value.
//
// Order history pages render dates differently per marketplace locale
// ("21 juillet 2021", "July 21, 2021", "21.07.2021", ...). Parse tries a fixed
// list of layouts against a fixed list of locales and returns the first
// combination that yields a valid date. The layout list order is the tie-break
// when an input would match more than one combination, so day-first numeric
// dates win over month-first ones.
//
// Parse is pure: it never falls back to the current date. Callers that must
// not block on an unreadable date substitute their own fallback.
package dateparse

import (
	"errors"
	"strings"
	"time"

	"github.com/goodsign/monday"
)

// ErrNotParseable is returned when no layout/locale combination matches.
var ErrNotParseable = errors.New("date text does not match any known format")

// layouts in priority order. First match wins; no combination is retried
// after a success.
var layouts = []string{
	"2 January 2006",  // 21 juillet 2021
	"January 2, 2006", // July 21, 2021
	"2006-01-02",      // 2021-07-21
	"02/01/2006",      // 21/07/2021
	"01/02/2006",      // 07/21/2021
	"2 Jan 2006",      // 21 Jul 2021
	"2006.01.02",      // 2021.07.21
	"02.01.2006",      // 21.07.2021
	"02-01-2006",      // 21-07-2021
	"2006/01/02",      // 2021/07/21
}

var locales = []monday.Locale{
	monday.LocaleEnUS,
	monday.LocaleFrFR,
	monday.LocaleEsES,
	monday.LocaleDeDE,
	monday.LocaleItIT,
}

// Parse converts trimmed page text containing a date into a canonical value.
// It returns ErrNotParseable when the text matches none of the known
// layout/locale combinations.
func Parse(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, ErrNotParseable
	}

	for _, layout := range layouts {
		for _, locale := range locales {
			parsed, err := monday.ParseInLocation(layout, trimmed, time.UTC, locale)
			if err == nil {
				return parsed, nil
			}
		}
	}

	return time.Time{}, ErrNotParseable
}
