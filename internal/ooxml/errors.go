// SPDX-License-Identifier: Apache-2.0

package ooxml

import "errors"

var (
	// ErrMalformedContainer means the input is not a usable OOXML archive.
	// It is the only extraction error that aborts analysis.
	ErrMalformedContainer = errors.New("malformed container")
	// ErrUnrecognizedPart marks a part whose name does not follow the
	// expected naming convention. The part is skipped.
	ErrUnrecognizedPart = errors.New("unrecognized part")
	// ErrTextExtractionFailed marks a part whose XML could not be projected
	// to text. Callers degrade to empty text.
	ErrTextExtractionFailed = errors.New("text extraction failed")
)
