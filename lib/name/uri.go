// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

func unreserved(b byte) bool {
	return (b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9') ||
		b == '+' || b == '.' || b == '_' || b == '-'
}

func onlyPeriods(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != '.' {
			return false
		}
	}
	return true
}

func escapeComponent(c Component) string {
	if onlyPeriods(string(c)) {
		return "..." + string(c)
	}
	var builder strings.Builder
	builder.Grow(len(c))
	for _, b := range []byte(c) {
		if unreserved(b) {
			builder.WriteByte(b)
			continue
		}
		builder.WriteByte('%')
		builder.WriteByte(hexDigits[b>>4])
		builder.WriteByte(hexDigits[b&0x0F])
	}
	return builder.String()
}

func unhex(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}

// unescapeComponent reverses escapeComponent. The period rule is
// applied to the escaped text: "..." is empty, "...." is ".", and "."
// or ".." alone are rejected.
func unescapeComponent(text string) (Component, error) {
	if onlyPeriods(text) {
		if len(text) < 3 {
			return nil, fmt.Errorf("component %q is not allowed", text)
		}
		return Component(text[3:]), nil
	}
	result := make(Component, 0, len(text))
	for i := 0; i < len(text); i++ {
		if text[i] != '%' {
			result = append(result, text[i])
			continue
		}
		if i+2 >= len(text) {
			return nil, fmt.Errorf("truncated escape in %q", text)
		}
		high, okHigh := unhex(text[i+1])
		low, okLow := unhex(text[i+2])
		if !okHigh || !okLow {
			return nil, fmt.Errorf("invalid escape %q in %q", text[i:i+3], text)
		}
		result = append(result, high<<4|low)
		i += 2
	}
	return result, nil
}

// FromURI parses the URI form produced by Name.String. An optional
// "ndn:" scheme is accepted and ignored. Empty elements between
// slashes are skipped.
func FromURI(uri string) (Name, error) {
	uri = strings.TrimPrefix(uri, "ndn:")
	n := Name{}
	for _, element := range strings.Split(uri, "/") {
		if element == "" {
			continue
		}
		component, err := unescapeComponent(element)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", uri, err)
		}
		n = append(n, component)
	}
	return n, nil
}

// MustParse is FromURI for constants and tests. It panics on error.
func MustParse(uri string) Name {
	n, err := FromURI(uri)
	if err != nil {
		panic(err)
	}
	return n
}
