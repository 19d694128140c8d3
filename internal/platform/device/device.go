// Package device reduces a User-Agent to a coarse, non-identifying class used
// as a tally dimension.
package device

import (
	"strings"

	"github.com/mssola/useragent"
)

// Class is a coarse device category.
type Class string

const (
	ClassUnknown Class = "unknown"
	ClassBot     Class = "bot"
	ClassMobile  Class = "mobile"
	ClassDesktop Class = "desktop"
)

// Classes lists every class.
var Classes = []Class{ClassUnknown, ClassBot, ClassMobile, ClassDesktop}

// Classify maps a User-Agent header to a Class.
func Classify(userAgent string) Class {
	userAgent = strings.TrimSpace(userAgent)
	if userAgent == "" {
		return ClassUnknown
	}
	ua := useragent.New(userAgent)
	switch {
	case ua.Bot():
		return ClassBot
	case ua.Mobile():
		return ClassMobile
	default:
		return ClassDesktop
	}
}

// ParseClass accepts a stored class name; anything unrecognized is unknown.
func ParseClass(s string) Class {
	switch c := Class(s); c {
	case ClassBot, ClassMobile, ClassDesktop:
		return c
	}
	return ClassUnknown
}

// DisplayName renders "Browser on OS" for logs.
func DisplayName(userAgent string) string {
	if strings.TrimSpace(userAgent) == "" {
		return "Unknown Device"
	}
	ua := useragent.New(userAgent)
	browser, _ := ua.Browser()
	os := ua.OS()
	if browser == "" {
		browser = "Unknown Browser"
	}
	if os == "" {
		os = ua.Platform()
	}
	if os == "" {
		os = "Unknown OS"
	}
	return strings.TrimSpace(browser + " on " + os)
}
