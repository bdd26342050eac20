package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var reLooseHHMM = regexp.MustCompile(`^(\d{1,2})[:.](\d{2})$`)

// TrimAndNormalize trims the ends and collapses inner whitespace runs to a
// single space.
func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		result.WriteRune(r)
		lastWasSpace = false
	}

	return result.String()
}

func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

func NormalizeName(name string) string {
	return TrimAndNormalize(name)
}

// NormalizeHHMM pads single digit hours and accepts '.' as a separator, so
// "9:00" and "9.00" both become "09:00". Anything else is returned trimmed.
func NormalizeHHMM(s string) string {
	s = strings.TrimSpace(s)
	m := reLooseHHMM.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	hour := m[1]
	if len(hour) == 1 {
		hour = "0" + hour
	}
	return hour + ":" + m[2]
}

// NormalizeTimeZone trims the zone name and maps the common lowercase
// spelling of UTC to the canonical one.
func NormalizeTimeZone(tz string) string {
	p := Pipeline{
		strings.TrimSpace,
		func(s string) string {
			if strings.EqualFold(s, "utc") || strings.EqualFold(s, "z") {
				return "UTC"
			}
			return s
		},
	}
	return p.Apply(tz)
}

// NormalizeID trims an identifier taken from a path or body.
func NormalizeID(id string) string {
	return strings.TrimSpace(id)
}
