package modhost

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Foo", "foo"},
		{"foo", "foo"},
		{" FOO ", "foo"},
		{"\tAuto Save\n", "auto save"},
		{"", ""},
		{"   ", ""},
		{"MAP-Hack_2", "map-hack_2"},
		{"Ünïcode", "Ünïcode"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{"Foo", " FOO ", "\v\fRadar\r", "ÀBC", "a b c", "\x00X"}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}
