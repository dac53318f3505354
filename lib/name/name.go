// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"fmt"
	"strings"
)

// Name is an ordered sequence of components. The zero value is the
// empty (root) name.
type Name []Component

// New builds a name from components.
func New(components ...Component) Name {
	return Name(components)
}

// FromPath returns prefix followed by one plain component per element
// of the slash-separated path. Empty elements are skipped, so "/" and
// "" both yield prefix alone.
func FromPath(prefix Name, path string) Name {
	result := prefix.Clone()
	for _, element := range strings.Split(path, "/") {
		if element == "" {
			continue
		}
		result = append(result, Plain(element))
	}
	return result
}

// Append returns a new name with components added. The receiver is not
// modified.
func (n Name) Append(components ...Component) Name {
	result := make(Name, 0, len(n)+len(components))
	result = append(result, n...)
	return append(result, components...)
}

// Clone returns a copy that shares no backing storage with n.
func (n Name) Clone() Name {
	if n == nil {
		return Name{}
	}
	result := make(Name, len(n))
	for i, component := range n {
		result[i] = append(Component(nil), component...)
	}
	return result
}

// Equal reports component-wise equality.
func (n Name) Equal(other Name) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if !n[i].Equal(other[i]) {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix is a component-wise prefix of n.
func (n Name) HasPrefix(prefix Name) bool {
	if len(prefix) > len(n) {
		return false
	}
	return n[:len(prefix)].Equal(prefix)
}

// At returns the component at index i. Negative indices count from the
// end, so At(-1) is the last component.
func (n Name) At(i int) Component {
	if i < 0 {
		i += len(n)
	}
	return n[i]
}

// String returns the URI form, "/" for the empty name.
func (n Name) String() string {
	if len(n) == 0 {
		return "/"
	}
	var builder strings.Builder
	for _, component := range n {
		builder.WriteByte('/')
		builder.WriteString(escapeComponent(component))
	}
	return builder.String()
}

// Wire returns the components as raw byte strings, the form names take
// inside packets and interests.
func (n Name) Wire() [][]byte {
	wire := make([][]byte, len(n))
	for i, component := range n {
		wire[i] = []byte(component)
	}
	return wire
}

// FromWire converts raw byte strings back into a name. The components
// are copied.
func FromWire(wire [][]byte) Name {
	n := make(Name, len(wire))
	for i, raw := range wire {
		n[i] = append(Component(nil), raw...)
	}
	return n
}

// MarshalText implements encoding.TextMarshaler using the URI form.
func (n Name) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler using the URI form.
func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := FromURI(string(text))
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	*n = parsed
	return nil
}
