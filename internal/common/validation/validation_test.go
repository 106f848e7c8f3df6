package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{"owner@example.com", " a.b+c@shop.co.uk "}
	invalid := []string{"", "owner", "owner@", "@example.com", "owner@example"}

	for _, v := range valid {
		assert.True(t, ValidateEmail(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidateEmail(v), v)
	}
}

func TestValidatePhone(t *testing.T) {
	valid := []string{"+234 803 555 0101", "(555) 123-4567", "5551234"}
	invalid := []string{"", "123", "phone", "+1 555 abc 1234", "1234567890123456"}

	for _, v := range valid {
		assert.True(t, ValidatePhone(v), v)
	}
	for _, v := range invalid {
		assert.False(t, ValidatePhone(v), v)
	}
}

func TestYearInRange(t *testing.T) {
	check := YearInRange(1800, 2026)

	assert.Empty(t, check("1999"))
	assert.Empty(t, check(" 2026 "))
	assert.Equal(t, "Year must be a number", check("nineteen"))
	assert.Equal(t, "Year must be between 1800 and 2026", check("1700"))
	assert.Equal(t, "Year must be between 1800 and 2026", check("2027"))
}

func TestURLAndMaxLength(t *testing.T) {
	assert.Empty(t, URL()("https://shop.example.com/about"))
	assert.NotEmpty(t, URL()("shop.example.com"))

	assert.Empty(t, MaxLength(3)("abc"))
	assert.NotEmpty(t, MaxLength(3)("abcd"))
}

func TestIsBlank(t *testing.T) {
	assert.True(t, IsBlank(""))
	assert.True(t, IsBlank("  \t"))
	assert.False(t, IsBlank(" x "))
}
