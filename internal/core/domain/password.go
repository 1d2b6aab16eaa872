package domain

import "strings"

const MinPasswordLength = 8

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"12345678":    {},
	"123456789":   {},
	"1234567890":  {},
	"qwerty123":   {},
	"qwertyuiop":  {},
	"iloveyou":    {},
	"letmein1":    {},
	"welcome1":    {},
	"admin123":    {},
	"abc12345":    {},
	"sunshine":    {},
	"football":    {},
	"baseball":    {},
	"trustno1":    {},
	"superman":    {},
	"11111111":    {},
	"00000000":    {},
}

// CheckPassword returns a human-readable reason when pw violates the password
// policy, or "" when it is acceptable.
func CheckPassword(pw string) string {
	if len(pw) < MinPasswordLength {
		return "must contain at least 8 characters"
	}
	if len(pw) > MaxPasswordBytes {
		return "must be at most 72 bytes"
	}
	if isNumeric(pw) {
		return "must not be entirely numeric"
	}
	if _, ok := commonPasswords[strings.ToLower(pw)]; ok {
		return "is too common"
	}
	return ""
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
