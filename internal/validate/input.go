// SPDX-License-Identifier: MIT

package validate

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Length validates that value has between minLen and maxLen characters after
// trimming surrounding whitespace.
func (v *Validator) Length(field, value string, minLen, maxLen int) {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	switch {
	case n < minLen && minLen == 1:
		v.AddError(field, "is required", value)
	case n < minLen:
		v.AddError(field, fmt.Sprintf("must be at least %d characters", minLen), value)
	case n > maxLen:
		v.AddError(field, fmt.Sprintf("must be at most %d characters", maxLen), value)
	}
}

// Email validates a single bare address such as "ada@example.com".
func (v *Validator) Email(field, value string) {
	value = strings.TrimSpace(value)
	if value == "" {
		v.AddError(field, "is required", value)
		return
	}
	addr, err := mail.ParseAddress(value)
	if err != nil || addr.Address != value || !strings.Contains(addr.Address[strings.LastIndex(addr.Address, "@")+1:], ".") {
		v.AddError(field, "must be a valid email address", value)
	}
}

// Pattern validates value against re.
func (v *Validator) Pattern(field, value string, re *regexp.Regexp, message string) {
	if !re.MatchString(value) {
		v.AddError(field, message, value)
	}
}

// First returns the first error as "<field> <message>", or "".
func (v *Validator) First() string {
	if len(v.errors) == 0 {
		return ""
	}
	e := v.errors[0]
	return e.Field + " " + e.Message
}
