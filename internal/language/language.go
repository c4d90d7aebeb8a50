package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// ToISO2 normalizes a language identifier ("fi", "fin", "Finnish") to its
// ISO 639-1 base code. Unknown values return the trimmed lowercase input.
func ToISO2(code string) string {
	cleaned := strings.ToLower(strings.TrimSpace(code))
	if cleaned == "" {
		return ""
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return cleaned
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return cleaned
	}
	return base.String()
}

// DisplayName returns the English name of a language code, suitable for log
// output and subtitle style names. Unknown codes fall back to the input.
func DisplayName(code string) string {
	cleaned := strings.TrimSpace(code)
	if cleaned == "" {
		return ""
	}
	tag, err := language.Parse(cleaned)
	if err != nil {
		return cleaned
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return cleaned
	}
	return name
}
