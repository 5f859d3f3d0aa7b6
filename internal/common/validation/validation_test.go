package validation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", Sanitize("  hello  "))
	assert.Equal(t, "&lt;b&gt;bold&lt;/b&gt;", Sanitize("<b>bold</b>"))

	long := strings.Repeat("a", MaxTextLength+50)
	assert.Len(t, Sanitize(long), MaxTextLength)
}

func TestSanitizeTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("猫", MaxTextLength+10)
	out := Sanitize(long)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, MaxTextLength, utf8.RuneCountInString(out))
}

func TestSanitizeTextCountsRawLength(t *testing.T) {
	// Escaping expands metacharacters; the cap applies to what the user
	// typed, not to the stored form.
	raw := "a&b " + strings.Repeat("<>'\"&", 19)
	assert.LessOrEqual(t, utf8.RuneCountInString(raw), MaxTextLength)

	out, err := SanitizeText("full_name", raw)
	assert.NoError(t, err)
	assert.Greater(t, len(out), MaxTextLength)
	assert.Contains(t, out, "&amp;")

	_, err = SanitizeText("full_name", "   ")
	assert.Error(t, err)
	_, err = SanitizeText("full_name", strings.Repeat("猫", MaxTextLength+1))
	assert.Error(t, err)
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com"))
	assert.Error(t, ValidateEmail(""))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail(strings.Repeat("a", MaxTextLength)+"@example.com"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("12345678"))
	assert.NoError(t, ValidatePassword("123456789012"))
	assert.Error(t, ValidatePassword("1234567"))
	assert.Error(t, ValidatePassword("1234567890123"))
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("title", "ok"))
	assert.Error(t, ValidateText("title", "   "))
	assert.Error(t, ValidateText("title", strings.Repeat("a", MaxTextLength+1)))

	// Runes, not bytes.
	assert.NoError(t, ValidateText("title", strings.Repeat("猫", MaxTextLength)))
}
