// SPDX-License-Identifier: Apache-2.0

package ooxml

import (
	"fmt"
	"strings"
)

// Kind identifies which OOXML document family a container belongs to.
type Kind string

const (
	// Word is a word-processing document (.docx).
	Word Kind = "word"
	// Slides is a slide-deck document (.pptx).
	Slides Kind = "slides"
)

// ParseKind accepts the kind name or the usual file extension.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "word", "docx":
		return Word, nil
	case "slides", "pptx":
		return Slides, nil
	}
	return "", fmt.Errorf("unsupported document kind %q", s)
}

// KindFromPath infers the kind from a file name extension.
func KindFromPath(path string) (Kind, error) {
	i := strings.LastIndexByte(path, '.')
	if i < 0 {
		return "", fmt.Errorf("cannot infer document kind from %q", path)
	}
	return ParseKind(path[i+1:])
}

func (k Kind) String() string { return string(k) }
