package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want string
	}{
		{"shorter", "hello", 10, "hello"},
		{"exact", "hello", 5, "hello"},
		{"cut", "hello world", 5, "hello"},
		{"multibyte", "héllo wörld", 7, "héllo w"},
		{"emoji", "📚📚📚", 2, "📚📚"},
		{"zero", "hello", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Truncate(tt.in, tt.n))
		})
	}
}

func TestSnippet_RuneLimit(t *testing.T) {
	long := strings.Repeat("é", 150)
	got := Snippet(long)

	assert.Equal(t, SnippetLength, utf8.RuneCountInString(got))
	assert.True(t, utf8.ValidString(got))
}

func TestNormalize_ComposesNFC(t *testing.T) {
	decomposed := "Cafe\u0301"
	assert.Equal(t, "Caf\u00e9", Normalize("  "+decomposed+" "))
}

func TestMarkdown(t *testing.T) {
	assert.Equal(t, "plain text", Markdown("plain text"))
	assert.Equal(t, "", Markdown("   "))
	assert.Equal(t, "A **bold** claim.", Markdown("<p>A <b>bold</b> claim.</p>"))
}

func TestContainsHTML(t *testing.T) {
	assert.True(t, ContainsHTML("<P>Shouty</P>"))
	assert.True(t, ContainsHTML("line<br/>break"))
	assert.False(t, ContainsHTML("3 < 4 and 5 > 2"))
}
