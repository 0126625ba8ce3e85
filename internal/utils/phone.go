package utils

import (
	"fmt"

	"github.com/ttacon/libphonenumber"
)

// DefaultPhoneRegion is used when a number has no country code.
const DefaultPhoneRegion = "IN"

// NormalizePhone parses a phone number and formats it as E.164.
func NormalizePhone(raw string) (string, error) {
	num, err := libphonenumber.Parse(raw, DefaultPhoneRegion)
	if err != nil {
		return "", fmt.Errorf("invalid phone number %q: %w", raw, err)
	}
	if !libphonenumber.IsValidNumber(num) {
		return "", fmt.Errorf("invalid phone number %q", raw)
	}
	return libphonenumber.Format(num, libphonenumber.E164), nil
}

// IsValidPhone reports whether raw parses as a valid number.
func IsValidPhone(raw string) bool {
	_, err := NormalizePhone(raw)
	return err == nil
}
