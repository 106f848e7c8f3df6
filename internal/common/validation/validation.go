package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{7,}$`)
	urlPattern   = regexp.MustCompile(`^https?://[^\s/$.?#].[^\s]*$`)
)

// FieldValidator checks a single non-empty value and returns a user-facing
// message, or "" when the value is acceptable.
type FieldValidator func(value string) string

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

// ValidatePhone accepts digits with optional leading + and common
// separators, requiring at least seven digits.
func ValidatePhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if !phonePattern.MatchString(phone) {
		return false
	}
	digits := 0
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15
}

func ValidateURL(url string) bool {
	return urlPattern.MatchString(strings.TrimSpace(url))
}

func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

func Email() FieldValidator {
	return func(value string) string {
		if !ValidateEmail(value) {
			return "Enter a valid email address"
		}
		return ""
	}
}

func Phone() FieldValidator {
	return func(value string) string {
		if !ValidatePhone(value) {
			return "Enter a valid phone number"
		}
		return ""
	}
}

func URL() FieldValidator {
	return func(value string) string {
		if !ValidateURL(value) {
			return "Enter a valid URL starting with http:// or https://"
		}
		return ""
	}
}

// YearInRange parses the value as a year only for the check; the stored
// value stays the text that was entered.
func YearInRange(min, max int) FieldValidator {
	return func(value string) string {
		year, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return "Year must be a number"
		}
		if year < min || year > max {
			return fmt.Sprintf("Year must be between %d and %d", min, max)
		}
		return ""
	}
}

func MaxLength(n int) FieldValidator {
	return func(value string) string {
		if len([]rune(value)) > n {
			return fmt.Sprintf("Must be at most %d characters", n)
		}
		return ""
	}
}
