package wiring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmFromRequiresExactPhrase(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  bool
	}{
		{"exact match", "DESTROY_ALL_DATA\n", true},
		{"trims trailing whitespace", "DESTROY_ALL_DATA  \n", true},
		{"wrong phrase", "yes\n", false},
		{"empty input", "\n", false},
		{"case mismatch rejected", "destroy_all_data\n", false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ConfirmFrom(strings.NewReader(c.input), "DESTROY_ALL_DATA")
			assert.Equal(t, c.want, got)
		})
	}
}
