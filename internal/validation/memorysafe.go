package validation

import (
	"fmt"
	"net/url"
	"unicode/utf8"
)

// chunkSize bounds the slice of input normalized at once
const chunkSize = 256

// InputField is one named value with its byte limit
type InputField struct {
	Name   string
	Value  string
	MaxLen int
}

// ValidateFieldMemorySafe checks the length first, then validates the field
// in chunks that never split a rune.
func ValidateFieldMemorySafe(field, fieldName string, maxLen int) error {
	if len(field) > maxLen {
		return fmt.Errorf("field %s exceeds maximum length of %d characters", fieldName, maxLen)
	}
	if !utf8.ValidString(field) {
		return fmt.Errorf("unicode security validation failed for field %s: %w", fieldName, ErrInvalidUTF8)
	}

	for start := 0; start < len(field); {
		end := min(start+chunkSize, len(field))
		for end < len(field) && !utf8.RuneStart(field[end]) {
			end++
		}

		// one rune of overlap keeps homographs at the boundary visible
		from := start
		if start > 0 {
			_, size := utf8.DecodeLastRuneInString(field[:start])
			from -= size
		}

		if err := ValidateUnicodeSecurity(field[from:end]); err != nil {
			return fmt.Errorf("unicode security validation failed for field %s: %w", fieldName, err)
		}
		start = end
	}

	return nil
}

// ValidatePayloadSize validates the size of incoming payloads
func ValidatePayloadSize(payload []byte, maxSize int64) error {
	if payload == nil {
		return nil
	}

	if int64(len(payload)) > maxSize {
		return fmt.Errorf("payload size %d exceeds maximum allowed size of %d bytes", len(payload), maxSize)
	}

	return nil
}

// ValidateInputBatch validates every input and collects the failures
func ValidateInputBatch(inputs []InputField) []error {
	var errs []error
	for _, input := range inputs {
		if err := ValidateFieldMemorySafe(input.Value, input.Name, input.MaxLen); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ValidateQueryValues validates every value of the named query parameters.
// Parameters not listed are ignored.
func ValidateQueryValues(values url.Values, maxLen int, names ...string) error {
	for _, name := range names {
		for _, v := range values[name] {
			if err := ValidateFieldMemorySafe(v, name, maxLen); err != nil {
				return err
			}
		}
	}
	return nil
}
