package settings

import (
	"bytes"
	"encoding/json"
	"regexp"

	"travelagency/pkg/apperr"
)

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_.]{0,63}$`)

const maxValueBytes = 16 << 10

// ParseEntry checks a settings key and its JSON value.
func ParseEntry(key string, value json.RawMessage) (json.RawMessage, error) {
	if !keyPattern.MatchString(key) {
		return nil, apperr.Invalid("key", key, "key must be lowercase letters, digits, dots or underscores")
	}
	value = bytes.TrimSpace(value)
	if len(value) == 0 || !json.Valid(value) {
		return nil, apperr.Invalid("value", "", "value must be valid json")
	}
	if len(value) > maxValueBytes {
		return nil, apperr.Invalid("value", "", "value is too large")
	}
	return value, nil
}
