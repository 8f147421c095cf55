package utils

import "regexp"

// InscricaoLength is the number of digits of a Bahia state registration
const InscricaoLength = 9

var nonDigit = regexp.MustCompile(`\D`)

// CleanInscricao removes all non-numeric characters
func CleanInscricao(ie string) string {
	return nonDigit.ReplaceAllString(ie, "")
}

// IsValidInscricao reports whether ie has exactly nine digits after cleanup
func IsValidInscricao(ie string) bool {
	return len(CleanInscricao(ie)) == InscricaoLength
}
