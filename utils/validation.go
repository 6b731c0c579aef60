// utils/validation.go
package utils

import (
	"regexp"
	"strings"
)

var (
	phoneRegex = regexp.MustCompile(`^\+?[1-9]\d{7,14}$`)
	// Old ABC1234 and Mercosul ABC1D23 plates.
	plateRegex = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)
	digitRegex = regexp.MustCompile(`\D`)
)

// ValidatePhone checks if a phone number is in a valid international format
func ValidatePhone(phone string) bool {
	// Clean the phone number
	cleaned := strings.ReplaceAll(phone, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "-", "")
	cleaned = strings.ReplaceAll(cleaned, "(", "")
	cleaned = strings.ReplaceAll(cleaned, ")", "")

	return phoneRegex.MatchString(cleaned)
}

// NormalizePlate uppercases a plate and strips separators.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	plate = strings.ReplaceAll(plate, "-", "")
	return strings.ReplaceAll(plate, " ", "")
}

func ValidatePlate(plate string) bool {
	return plateRegex.MatchString(NormalizePlate(plate))
}

// OnlyDigits strips everything but digits, for CPF/CNPJ and zip codes.
func OnlyDigits(s string) string {
	return digitRegex.ReplaceAllString(s, "")
}

// ValidateDocument accepts an empty document or one with 11 (CPF) or 14 (CNPJ)
// digits.
func ValidateDocument(doc string) bool {
	d := OnlyDigits(doc)
	return d == "" || len(d) == 11 || len(d) == 14
}
