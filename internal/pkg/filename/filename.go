package filename

import (
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// Sanitize turns arbitrary user text into a single safe path segment:
// whitespace runs and path separators become underscores, leading dots are dropped.
func Sanitize(name string) string {
	name = whitespace.ReplaceAllString(strings.TrimSpace(name), "_")
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, name)
	return strings.TrimLeft(name, ".")
}
