package model

import (
	"fmt"
	"strings"
)

// Contact is a normalized phone-style address that uniquely identifies a
// player. Always produce one via NormalizeContact before storing or comparing.
type Contact string

// ContactDigits is the required length of a normalized contact
// (1-digit country code plus a 10-digit number)
const ContactDigits = 11

// InvalidContactError reports a contact that failed normalization
type InvalidContactError struct {
	Input  string
	Reason string
}

func (e *InvalidContactError) Error() string {
	return fmt.Sprintf("invalid contact %q: %s", e.Input, e.Reason)
}

// NormalizeContact validates and canonicalizes a raw contact address.
// A single leading "+" is stripped; the remainder must be exactly 11 digits.
func NormalizeContact(raw string) (Contact, error) {
	if raw == "" {
		return "", &InvalidContactError{Input: raw, Reason: "empty"}
	}

	normalized := strings.TrimPrefix(raw, "+")

	for _, r := range normalized {
		if r < '0' || r > '9' {
			return "", &InvalidContactError{Input: raw, Reason: "not numeric"}
		}
	}

	if len(normalized) != ContactDigits {
		return "", &InvalidContactError{
			Input:  raw,
			Reason: fmt.Sprintf("must be %d digits including country code, got %d", ContactDigits, len(normalized)),
		}
	}

	return Contact(normalized), nil
}
