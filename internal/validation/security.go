// Package validation guards free-text input against control characters,
// invisible formatting and mixed-script homographs.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Security validation errors
var (
	ErrInvalidUnicodeSecurity  = errors.New("input contains a forbidden control character")
	ErrHomographAttackDetected = errors.New("input mixes Cyrillic lookalikes into Latin text")
	ErrInvalidUnicodeCategory  = errors.New("input contains a forbidden unicode category")
	ErrInvalidUTF8             = errors.New("input is not valid UTF-8")
)

// Blocked Unicode categories for security
var blockedCategories = []*unicode.RangeTable{
	unicode.Cc, // Control characters
	unicode.Cf, // Format characters (zero-width, etc.)
	unicode.Cs, // Surrogate characters
	unicode.Co, // Private use characters
}

// Cyrillic letters that render like Latin ones
var cyrillicHomographs = map[rune]rune{
	'а': 'a',
	'е': 'e',
	'о': 'o',
	'р': 'p',
	'с': 'c',
	'х': 'x',
	'у': 'y',
	'А': 'A',
	'Е': 'E',
	'О': 'O',
	'Р': 'P',
	'С': 'C',
	'Х': 'X',
	'У': 'Y',
}

// ValidateUnicodeSecurity rejects invalid UTF-8, C0 controls and DEL,
// control/format/surrogate/private-use runes after NFKC normalization, and
// Cyrillic homographs glued to Latin letters.
func ValidateUnicodeSecurity(input string) error {
	if !utf8.ValidString(input) {
		return ErrInvalidUTF8
	}

	if strings.ContainsFunc(input, isDangerousControl) {
		return ErrInvalidUnicodeSecurity
	}

	normalized := norm.NFKC.String(input)

	if containsHomographAttacks(input) || containsHomographAttacks(normalized) {
		return ErrHomographAttackDetected
	}

	for _, r := range normalized {
		if unicode.IsOneOf(blockedCategories, r) {
			return ErrInvalidUnicodeCategory
		}
	}

	return nil
}

func isDangerousControl(r rune) bool {
	return r < 0x20 || r == 0x7F
}

// containsHomographAttacks reports a Cyrillic lookalike directly next to a
// Latin letter. Pure Cyrillic ("Иван") and separated mixes ("Alex-Алексей")
// pass.
func containsHomographAttacks(input string) bool {
	runes := []rune(input)
	for i, r := range runes {
		if _, ok := cyrillicHomographs[r]; !ok {
			continue
		}
		if i > 0 && isLatinLetter(runes[i-1]) {
			return true
		}
		if i < len(runes)-1 && isLatinLetter(runes[i+1]) {
			return true
		}
	}
	return false
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ValidateFieldSecurity validates a single field with length and security checks
func ValidateFieldSecurity(field, fieldName string, maxLen int) error {
	if len(field) > maxLen {
		return fmt.Errorf("field %s exceeds maximum length of %d characters", fieldName, maxLen)
	}

	if err := ValidateUnicodeSecurity(field); err != nil {
		return fmt.Errorf("unicode security validation failed for field %s: %w", fieldName, err)
	}

	return nil
}

// IsSecurityViolation reports whether err comes from the unicode checks
// rather than a length limit
func IsSecurityViolation(err error) bool {
	return errors.Is(err, ErrInvalidUnicodeSecurity) ||
		errors.Is(err, ErrHomographAttackDetected) ||
		errors.Is(err, ErrInvalidUnicodeCategory) ||
		errors.Is(err, ErrInvalidUTF8)
}
