package flockwave

import (
	"strings"
	"unicode/utf8"
)

// MaxUAVIDLength is the maximum length of a UAV identifier, in characters.
const MaxUAVIDLength = 64

// IsValidUAVID returns true if id can be used as a UAV identifier.
//
// Valid identifiers are non-empty, at most MaxUAVIDLength characters long
// and do not contain slashes.
func IsValidUAVID(id string) bool {
	return id != "" && utf8.RuneCountInString(id) <= MaxUAVIDLength && !strings.Contains(id, "/")
}

// MakeValidUAVID converts an arbitrary string into a valid UAV identifier.
// Slashes are replaced with dashes, overlong identifiers are truncated on a
// character boundary and the empty string becomes a single dash.
func MakeValidUAVID(id string) string {
	if id == "" {
		return "-"
	}
	if utf8.RuneCountInString(id) > MaxUAVIDLength {
		id = string([]rune(id)[:MaxUAVIDLength])
	}
	return strings.ReplaceAll(id, "/", "-")
}
