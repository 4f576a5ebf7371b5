package utils

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DurationShape names which free-text form a coupon duration matched.
type DurationShape int

const (
	// DurationUnparsed is any text that matches none of the known forms. It
	// contributes zero minutes, so the coupon is due for expiry immediately.
	DurationUnparsed DurationShape = iota
	DurationHoursMinutes
	DurationHours
	DurationMinutes
)

func (s DurationShape) String() string {
	switch s {
	case DurationHoursMinutes:
		return "hours+minutes"
	case DurationHours:
		return "hours"
	case DurationMinutes:
		return "minutes"
	default:
		return "unparsed"
	}
}

var (
	hoursMinutesPattern = regexp.MustCompile(`(?i)^(\d+)\s*hrs?\s+(\d+)\s*mins?$`)
	hoursPattern        = regexp.MustCompile(`(?i)^(\d+)\s*hrs?$`)
	minutesPattern      = regexp.MustCompile(`(?i)^(\d+)\s*mins?$`)
)

// CouponDuration is the parsed form of a coupon's duration text.
type CouponDuration struct {
	Shape   DurationShape
	Minutes int
}

// Span returns the duration as a time.Duration.
func (d CouponDuration) Span() time.Duration {
	return time.Duration(d.Minutes) * time.Minute
}

// ParseCouponDuration reads "<N>hrs <N>min", "<N>hrs" or "<N>min".
func ParseCouponDuration(text string) CouponDuration {
	text = strings.TrimSpace(text)

	if m := hoursMinutesPattern.FindStringSubmatch(text); m != nil {
		return CouponDuration{Shape: DurationHoursMinutes, Minutes: atoi(m[1])*60 + atoi(m[2])}
	}
	if m := hoursPattern.FindStringSubmatch(text); m != nil {
		return CouponDuration{Shape: DurationHours, Minutes: atoi(m[1]) * 60}
	}
	if m := minutesPattern.FindStringSubmatch(text); m != nil {
		return CouponDuration{Shape: DurationMinutes, Minutes: atoi(m[1])}
	}
	return CouponDuration{Shape: DurationUnparsed}
}

// ExpiresAt returns start plus the parsed duration.
func ExpiresAt(start time.Time, text string) time.Time {
	return start.Add(ParseCouponDuration(text).Span())
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
