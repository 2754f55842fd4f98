package utils

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	MaxOneLinerChars    = 250
	MaxDescriptionWords = 100
)

// A leading +, a 1-3 digit country code, then exactly 10 digits. No
// spaces, dashes or other separators.
var contactPattern = regexp.MustCompile(`^\+\d{1,3}\d{10}$`)

// ValidContact reports whether s is a well-formed WhatsApp number.
func ValidContact(s string) bool {
	return contactPattern.MatchString(s)
}

// ValidOneLiner reports whether s fits the one-liner length limit.
func ValidOneLiner(s string) bool {
	return utf8.RuneCountInString(s) <= MaxOneLinerChars
}

// ValidDescription reports whether s fits the description word limit.
// Words are whitespace-delimited.
func ValidDescription(s string) bool {
	return len(strings.Fields(s)) <= MaxDescriptionWords
}
