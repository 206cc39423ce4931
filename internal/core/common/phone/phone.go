// Package phone normalizes mobile numbers to the 9 digit local form used by
// the mobile money provider.
package phone

import (
	"errors"
	"strings"
)

const LocalLength = 9

var ErrInvalidPhone = errors.New("phone number must have 9 digits, optionally prefixed by the country code")

// Normalize strips formatting characters and an international prefix ("+" or
// "00") and returns the local number. Both "6XXXXXXXX" and "224 6XXXXXXXX"
// are accepted when countryCode is "224".
func Normalize(raw, countryCode string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '.', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	cleaned = strings.TrimPrefix(cleaned, "+")
	if strings.HasPrefix(cleaned, "00") {
		cleaned = cleaned[2:]
	}

	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", ErrInvalidPhone
		}
	}

	switch {
	case len(cleaned) == LocalLength:
		return cleaned, nil
	case countryCode != "" && len(cleaned) == len(countryCode)+LocalLength && strings.HasPrefix(cleaned, countryCode):
		return cleaned[len(countryCode):], nil
	}
	return "", ErrInvalidPhone
}

// International prefixes a local number with the country code, the form the
// SMS gateway expects.
func International(local, countryCode string) string {
	return countryCode + local
}

// ToInternational normalizes raw and returns it with the country code.
func ToInternational(raw, countryCode string) (string, error) {
	local, err := Normalize(raw, countryCode)
	if err != nil {
		return "", err
	}
	return International(local, countryCode), nil
}
