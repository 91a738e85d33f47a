package errors

import (
	"strings"
	"testing"
)

func TestValidateHash(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"full sha1", "9fceb02d0ae598e95dc970b74767f19372d61af8", false},
		{"abbreviated", "9fceb02", false},
		{"upper case", "ABCDEF12", false},

		{"empty", "", true},
		{"too short", "abc", true},
		{"non hex", "xyz12345", true},
		{"with space", "9fce b02", true},
		{"too long", strings.Repeat("a", 65), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHash(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHash(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidHash) {
				t.Errorf("ValidateHash(%q) code = %v", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidateRefName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"head", "HEAD", false},
		{"remote branch", "refs/remotes/origin/main", false},
		{"tag", "refs/tags/v1.0", false},

		{"empty", "", true},
		{"too long", strings.Repeat("r", 300), true},
		{"space", "refs/heads/my branch", true},
		{"newline", "HEAD\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRefName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateRefName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
