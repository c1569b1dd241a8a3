// Package validate holds the input format checks the dialog flows apply
// before accepting a value.
package validate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var phoneRe = regexp.MustCompile(`^\+998\d{9}$`)

// Phone accepts Uzbek mobile numbers: +998 followed by exactly 9 digits.
func Phone(s string) bool {
	return phoneRe.MatchString(strings.TrimSpace(s))
}

// BirthDate accepts DD-MM-YYYY with day 1-31, month 1-12 and year between
// 1900 and the current year.
func BirthDate(s string) bool {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return false
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return false
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return false
	}
	if day < 1 || day > 31 || month < 1 || month > 12 {
		return false
	}
	return year >= 1900 && year <= time.Now().Year()
}

// GroupLink accepts Telegram group or channel invite links.
func GroupLink(s string) bool {
	s = strings.TrimSpace(s)
	return strings.Contains(s, "t.me/") || strings.Contains(s, "telegram.me/")
}

// Text accepts any non-empty text value.
func Text(s string) bool {
	return strings.TrimSpace(s) != ""
}
