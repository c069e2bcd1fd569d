package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeE164(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"044 668 18 00", "+41446681800"},
		{"+41 44 668 18 00", "+41446681800"},
		{"  ", ""},
		{"not a number", "not a number"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeE164(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeE164InGermanNumber(t *testing.T) {
	assert.Equal(t, "+493012345678", NormalizeE164In("030 12345678", "DE"))
}
