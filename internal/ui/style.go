package ui

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// Style selects how docker output and progress are shown.
type Style string

const (
	// StyleNone streams docker output straight to the terminal.
	StyleNone Style = "none"
	// StyleQuiet hides docker output unless a command fails.
	StyleQuiet Style = "quiet"
	// StyleStatus hides docker output and shows a spinner with the current step.
	StyleStatus Style = "status"
)

var styles = []Style{StyleNone, StyleQuiet, StyleStatus}

var _ pflag.Value = (*Style)(nil)

func ParseStyle(s string) (Style, error) {
	style := Style(strings.ToLower(strings.TrimSpace(s)))
	if !lo.Contains(styles, style) {
		return "", fmt.Errorf("invalid style %q (must be one of %s)", s, StyleNames())
	}
	return style, nil
}

func StyleNames() string {
	return strings.Join(lo.Map(styles, func(s Style, _ int) string { return string(s) }), "|")
}

// Quiet reports whether docker output should be captured instead of shown.
func (s Style) Quiet() bool {
	return s == StyleQuiet || s == StyleStatus
}

func (s *Style) String() string {
	if *s == "" {
		return string(StyleNone)
	}
	return string(*s)
}

func (s *Style) Set(value string) error {
	style, err := ParseStyle(value)
	if err != nil {
		return err
	}
	*s = style
	return nil
}

func (s *Style) Type() string {
	return "style"
}
