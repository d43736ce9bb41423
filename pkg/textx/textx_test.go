package textx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fairyhunter13/ai-interview-coach/pkg/textx"
)

func TestSanitizeText(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "hello world", textx.SanitizeText("  hello world  "))
	assert.Equal(t, "a\nb", textx.SanitizeText("a\nb"))
	assert.Equal(t, "ab", textx.SanitizeText("a\x00\x08b"))
	assert.Equal(t, "tab\tkept", textx.SanitizeText("tab\tkept"))
	assert.Equal(t, "", textx.SanitizeText("\x00\x01\x02"))
}

func TestNormalizeLines(t *testing.T) {
	t.Parallel()
	in := "Jane   Doe\n\n\n  Developed    things \t here  \n"
	assert.Equal(t, "Jane Doe\nDeveloped things here", textx.NormalizeLines(in))
	assert.Equal(t, "", textx.NormalizeLines("   \n \n"))
	assert.Equal(t, "one line", textx.NormalizeLines("one line"))
}
