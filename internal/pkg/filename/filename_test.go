package filename

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"my bike.jpg":         "my_bike.jpg",
		"  lots   of  space ": "lots_of_space",
		"Red\tHonda\nCBR":     "Red_Honda_CBR",
		"AC/DC poster":        "AC_DC_poster",
		"../../etc/passwd":    "_.._etc_passwd",
		`C:\Users\a b.png`:    "C:_Users_a_b.png",
		".env":                "env",
		"":                    "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Sanitize(in), in)
	}
}
