package errors

import (
	"regexp"
	"unicode"
)

// hashRegex matches abbreviated or full hexadecimal object names.
var hashRegex = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

// ValidateHash validates a commit hash from an input document or request.
func ValidateHash(hash string) error {
	if hash == "" {
		return New(ErrCodeInvalidHash, "commit hash cannot be empty")
	}
	if !hashRegex.MatchString(hash) {
		return New(ErrCodeInvalidHash, "invalid commit hash: %q", hash)
	}
	return nil
}

// ValidateRefName validates a ref name attached to a commit.
// Only shape is checked; whether the ref is rendered is decided elsewhere.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters or spaces
//   - Maximum length of 256 characters
func ValidateRefName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "ref name cannot be empty")
	}

	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "ref name too long (max 256 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) || r == ' ' {
			return New(ErrCodeInvalidInput, "ref name contains invalid characters: %q", name)
		}
	}

	return nil
}
