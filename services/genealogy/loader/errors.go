// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package loader

import (
	"errors"
	"fmt"
)

// Sentinel errors for loading.
var (
	// ErrInvalidFormat is wrapped by every FormatError.
	ErrInvalidFormat = errors.New("invalid file format")

	// ErrUnsupportedSource is returned for a location scheme Open cannot read.
	ErrUnsupportedSource = errors.New("unsupported tree source")
)

// Rule identifies which format rule a row violated.
type Rule string

const (
	RuleHeader         Rule = "header"
	RuleMissingRow     Rule = "missing_row"
	RuleColumnCount    Rule = "column_count"
	RuleYear           Rule = "year"
	RuleDuplicate      Rule = "duplicate_advisee"
	RuleUnknownAdvisor Rule = "unknown_advisor"
	RuleLineLength     Rule = "line_length"
)

// FormatError describes why the input is not a valid genealogy.
type FormatError struct {
	// Line is the 1-based line number of the offending row; 0 when the
	// problem is a missing row at end of input.
	Line int

	// Rule is the rule that was violated.
	Rule Rule

	// Value is the offending field or row, when there is one.
	Value string

	// Err is an underlying cause, such as a strconv or tree error.
	Err error
}

func (e *FormatError) Error() string {
	msg := e.message()
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

func (e *FormatError) message() string {
	switch e.Rule {
	case RuleHeader:
		return fmt.Sprintf("unexpected header %q, want %q", e.Value, header)
	case RuleMissingRow:
		return e.Value
	case RuleColumnCount:
		return fmt.Sprintf("unexpected number of entries in %q, want 3", e.Value)
	case RuleYear:
		return fmt.Sprintf("advisee year must be an integer, got %q", e.Value)
	case RuleDuplicate:
		return fmt.Sprintf("duplicate advisee %q", e.Value)
	case RuleUnknownAdvisor:
		return fmt.Sprintf("advisor %q not found", e.Value)
	case RuleLineLength:
		return fmt.Sprintf("row longer than %d bytes", maxLineBytes)
	default:
		return string(e.Rule)
	}
}

// Unwrap exposes ErrInvalidFormat and the underlying cause to errors.Is.
func (e *FormatError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidFormat}
	}
	return []error{ErrInvalidFormat, e.Err}
}
