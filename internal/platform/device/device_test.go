package device

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
)

type DeviceSuite struct {
	suite.Suite
}

func TestDeviceSuite(t *testing.T) {
	suite.Run(t, new(DeviceSuite))
}

const (
	chromeDesktop = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	safariIPhone  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	googlebot     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func (s *DeviceSuite) TestClassify() {
	s.Run("empty user agent is unknown", func() {
		s.Equal(ClassUnknown, Classify(""))
		s.Equal(ClassUnknown, Classify("   "))
	})

	s.Run("desktop chrome", func() {
		s.Equal(ClassDesktop, Classify(chromeDesktop))
	})

	s.Run("iphone safari is mobile", func() {
		s.Equal(ClassMobile, Classify(safariIPhone))
	})

	s.Run("crawler is a bot", func() {
		s.Equal(ClassBot, Classify(googlebot))
	})
}

func (s *DeviceSuite) TestParseClass() {
	for _, c := range Classes {
		s.Equal(c, ParseClass(string(c)))
	}
	s.Equal(ClassUnknown, ParseClass("tablet"))
}

func (s *DeviceSuite) TestDisplayName() {
	s.Equal("Unknown Device", DisplayName(""))

	name := DisplayName(chromeDesktop)
	s.Contains(name, "Chrome")
	s.Contains(name, " on ")
	s.Equal(name, strings.TrimSpace(name))
}
