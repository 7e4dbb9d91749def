package utils

import (
	"regexp"
	"strings"
)

var nonDigitRegexp = regexp.MustCompile(`\D`)

// NormalizePhoneNumber оставляет только цифры, сохраняя ведущий "+".
func NormalizePhoneNumber(phone string) string {
	phone = strings.TrimSpace(phone)
	prefix := ""
	if strings.HasPrefix(phone, "+") {
		prefix = "+"
	}
	digits := nonDigitRegexp.ReplaceAllString(phone, "")
	if digits == "" {
		return ""
	}
	return prefix + digits
}
