package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Buy milk", "Buy milk"},
		{"  Buy milk  ", "Buy milk"},
		{"\t\nBuy  milk\n", "Buy  milk"},
		{"   ", ""},
		{"", ""},
		{"<b>x</b>", "<b>x</b>"},
	}
	for _, tt := range tests {
		got := SanitizeText(tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, strings.TrimSpace(got), got, "output must have no surrounding whitespace")
	}
}

func TestLengthBounds(t *testing.T) {
	tests := []struct {
		name  string
		check func(string) bool
		max   int
	}{
		{"todo text", IsValidTodoText, MaxTodoText},
		{"thread title", IsValidThreadTitle, MaxThreadTitle},
		{"message content", IsValidMessageContent, MaxMessageContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, tt.check(""), "empty")
			assert.False(t, tt.check("   \t "), "whitespace only")
			assert.True(t, tt.check("a"), "single char")
			assert.True(t, tt.check(strings.Repeat("a", tt.max)), "exactly max")
			assert.False(t, tt.check(strings.Repeat("a", tt.max+1)), "max+1")
			assert.True(t, tt.check("  "+strings.Repeat("a", tt.max)+"  "), "max after trim")
		})
	}
}

func TestLengthCountsRunes(t *testing.T) {
	assert.True(t, IsValidTodoText(strings.Repeat("é", MaxTodoText)))
	assert.False(t, IsValidTodoText(strings.Repeat("é", MaxTodoText+1)))
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("ada@example.com"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("not-an-email"))
	assert.False(t, IsValidEmail("Ada <ada@example.com>"))
}

func TestIsValidPassword(t *testing.T) {
	assert.False(t, IsValidPassword("short"))
	assert.True(t, IsValidPassword("password123"))
	assert.True(t, IsValidPassword(strings.Repeat("x", 72)))
	assert.False(t, IsValidPassword(strings.Repeat("x", 73)))
	// 36 two-byte runes is 72 bytes; one more crosses the limit.
	assert.True(t, IsValidPassword(strings.Repeat("é", 36)))
	assert.False(t, IsValidPassword(strings.Repeat("é", 37)))
}
