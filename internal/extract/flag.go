package extract

import "strings"

// flagStyle and flagColours identify rows shaded as pending or superseded.
const flagStyle = "background:pink"

var flagColours = map[string]bool{
	"pink":    true,
	"#cef6f5": true,
}

// IsFlagged reports whether a row or cell's style or bgcolor attribute
// marks it as outside the canonical record list.
func IsFlagged(style, bgcolor string) bool {
	if strings.Contains(strings.ToLower(style), flagStyle) {
		return true
	}
	return flagColours[strings.ToLower(strings.TrimSpace(bgcolor))]
}
