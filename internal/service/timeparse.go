package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	time12Re = regexp.MustCompile(`(?i)^(\d{1,2})(?::(\d{2}))?\s*(am|pm)$`)
	time24Re = regexp.MustCompile(`^([01]?\d|2[0-3]):([0-5]\d)$`)
)

// NormalizeTime converts "7pm", "7:30 PM", "12am" or "19:30" to 24-hour "HH:MM".
func NormalizeTime(s string) (string, error) {
	s = strings.TrimSpace(s)

	if m := time24Re.FindStringSubmatch(s); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return fmt.Sprintf("%02d:%02d", hour, minute), nil
	}

	m := time12Re.FindStringSubmatch(s)
	if m == nil {
		return "", ErrInvalidTime
	}

	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if hour < 1 || hour > 12 || minute > 59 {
		return "", ErrInvalidTime
	}

	pm := strings.EqualFold(m[3], "pm")
	switch {
	case pm && hour != 12:
		hour += 12
	case !pm && hour == 12:
		hour = 0
	}
	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
