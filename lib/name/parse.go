// Copyright 2026 The NDNFS Authors
// SPDX-License-Identifier: Apache-2.0

package name

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRequest is returned by Parse for any name that breaks the
// ordering rules or lies outside the served prefix.
var ErrInvalidRequest = errors.New("invalid request name")

// Class is the classification of a parsed request.
type Class uint8

const (
	// Generic names a path with no version: a directory listing, or
	// the attributes of the current version of a file.
	Generic Class = iota

	// Versioned names the attributes of one version of a file.
	Versioned

	// SegmentRequest names one signed segment of a version.
	SegmentRequest

	// Meta names the metadata (MIME type) of a version.
	Meta
)

func (class Class) String() string {
	switch class {
	case Generic:
		return "generic"
	case Versioned:
		return "versioned"
	case SegmentRequest:
		return "segment"
	case Meta:
		return "meta"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(class))
	}
}

// NoNumber marks an absent version or segment in a Request.
const NoNumber int64 = -1

// Request is a classified request name.
type Request struct {
	Class Class

	// Path is the slash-separated file path with the prefix removed,
	// "/" for the root.
	Path string

	// Version is NoNumber for Generic requests.
	Version int64

	// Segment is NoNumber unless Class is SegmentRequest.
	Segment int64
}

type parseState uint8

const (
	statePath parseState = iota
	stateVersioned
	stateSegment
	stateMeta
)

// Parse classifies requestName. The components of prefix must match
// the head of requestName exactly; the remainder is read as a path,
// then at most one version, then at most one segment or the meta
// literal. Structural components are skipped wherever they appear.
func Parse(prefix Name, requestName Name) (Request, error) {
	if !requestName.HasPrefix(prefix) {
		return Request{}, fmt.Errorf("%w: %s is outside prefix %s", ErrInvalidRequest, requestName, prefix)
	}

	request := Request{Version: NoNumber, Segment: NoNumber}
	var pathElements []string
	state := statePath

	for _, component := range requestName[len(prefix):] {
		decoded, err := Decode(component)
		if err != nil {
			return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}

		switch decoded.Kind {
		case KindStructural:
			continue

		case KindVersion:
			if state != statePath {
				return Request{}, fmt.Errorf("%w: unexpected version component in %s", ErrInvalidRequest, requestName)
			}
			request.Version = decoded.Number
			state = stateVersioned

		case KindSegment:
			if state != stateVersioned {
				return Request{}, fmt.Errorf("%w: unexpected segment component in %s", ErrInvalidRequest, requestName)
			}
			request.Segment = decoded.Number
			state = stateSegment

		case KindPlain:
			switch state {
			case statePath:
				if err := validatePathElement(decoded.Text); err != nil {
					return Request{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
				}
				pathElements = append(pathElements, decoded.Text)
			case stateVersioned:
				if decoded.Text != MetaLiteral {
					return Request{}, fmt.Errorf("%w: unexpected component %q after version", ErrInvalidRequest, decoded.Text)
				}
				state = stateMeta
			default:
				return Request{}, fmt.Errorf("%w: trailing component %q in %s", ErrInvalidRequest, decoded.Text, requestName)
			}
		}
	}

	switch state {
	case statePath:
		request.Class = Generic
	case stateVersioned:
		request.Class = Versioned
	case stateSegment:
		request.Class = SegmentRequest
	case stateMeta:
		request.Class = Meta
	}
	request.Path = "/" + strings.Join(pathElements, "/")
	return request, nil
}

func validatePathElement(element string) error {
	switch {
	case element == "":
		return errors.New("empty path element")
	case element == "." || element == "..":
		return fmt.Errorf("path element %q is not allowed", element)
	case strings.ContainsAny(element, "/\x00"):
		return fmt.Errorf("path element %q contains a separator or NUL", element)
	}
	return nil
}
