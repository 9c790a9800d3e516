package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCodeAlphabet(t *testing.T) {
	for _, c := range "ILO01" {
		assert.NotContains(t, CodeAlphabet, string(c))
	}
	seen := map[rune]bool{}
	for _, c := range CodeAlphabet {
		require.False(t, seen[c], "duplicate symbol %q", c)
		seen[c] = true
	}
}

func TestNewCodeShape(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code, err := NewCode()
		if err != nil {
			t.Fatalf("NewCode: %v", err)
		}
		if len(code) != CodeLength {
			t.Fatalf("code %q has length %d", code, len(code))
		}
		for _, c := range code {
			if !strings.ContainsRune(CodeAlphabet, c) {
				t.Fatalf("code %q contains %q", code, c)
			}
		}
	})
}

func TestNormalizeCodeIsIdempotent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[ \ta-zA-Z0-9]{0,12}`).Draw(t, "raw")
		once := NormalizeCode(s)
		if NormalizeCode(once) != once {
			t.Fatalf("NormalizeCode not idempotent for %q", s)
		}
	})
	assert.Equal(t, "AB23CD", NormalizeCode("  ab23cd\n"))
}

func TestNormalizeSocialHandle(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "@party.people", want: "party.people"},
		{in: "  dj_night  ", want: "dj_night"},
		{in: "@ spaced", want: "spaced"},
		{in: "abc123", want: "abc123"},
		{in: "", wantErr: true},
		{in: "@", wantErr: true},
		{in: "has space", wantErr: true},
		{in: "emoji🎉", wantErr: true},
		{in: strings.Repeat("a", 30), want: strings.Repeat("a", 30)},
		{in: strings.Repeat("a", 31), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeSocialHandle(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
