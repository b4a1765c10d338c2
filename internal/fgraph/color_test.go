// SPDX-License-Identifier: MIT

package fgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFFColor(t *testing.T) {
	half := 0.5
	tests := []struct {
		name     string
		in       string
		override *float64
		want     string
	}{
		{"hex six", "#ff8000", nil, "0xFF8000"},
		{"hex three expands", "#f80", nil, "0xFF8800"},
		{"hex eight carries alpha", "#ff800080", nil, "0xFF8000@0.502"},
		{"hex four expands with alpha", "#f808", nil, "0xFF8800@0.533"},
		{"rgb func", "rgb(255, 128, 0)", nil, "0xFF8000"},
		{"rgba func", "rgba(255, 128, 0, 0.25)", nil, "0xFF8000@0.250"},
		{"rgb clamps components", "rgb(999, 0, 0)", nil, "0xFF0000"},
		{"engine token passthrough", "0xAB12EF", nil, "0xAB12EF"},
		{"engine token with alpha", "0xab12ef@0.75", nil, "0xAB12EF@0.750"},
		{"named color passthrough", "white", nil, "white"},
		{"empty falls back to white", "", nil, "white"},
		{"override replaces parsed alpha", "#ff000080", &half, "0xFF0000@0.500"},
		{"override on named color", "black", &half, "black@0.500"},
		{"surrounding whitespace", "  #00ff00  ", nil, "0x00FF00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FFColor(tt.in, tt.override))
		})
	}
}

func TestFFColor_OverrideClamps(t *testing.T) {
	over := 3.0
	assert.Equal(t, "0xFF0000@1.000", FFColor("#ff0000", &over))
	under := -1.0
	assert.Equal(t, "0xFF0000@0.000", FFColor("#ff0000", &under))
}

// Emitted tokens must parse back, so colors survive a second pass unchanged.
func TestParseColor_RoundTrip(t *testing.T) {
	inputs := []string{"#123456", "#abcdef80", "rgb(1,2,3)", "rgba(10,20,30,0.4)"}
	for _, in := range inputs {
		token := FFColor(in, nil)
		rgb, alpha, ok := ParseColor(token)
		require.True(t, ok, "token %q from %q must parse", token, in)
		again := rgb
		if alpha != nil {
			again = rgb + "@" + f3(*alpha)
		}
		assert.Equal(t, token, again)
	}
}

func TestParseColor_Invalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#12345g", "rgb(1,2)", "0x123", "notacolor@1"} {
		_, _, ok := ParseColor(in)
		assert.False(t, ok, "input %q should not parse", in)
	}
}

func TestEscText(t *testing.T) {
	assert.Equal(t, `a\\b\:c\'d`, escText(`a\b:c'd`))
	assert.Equal(t, "plain", escText("plain"))
}
