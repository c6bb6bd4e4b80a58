// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// Users can quote the code shown with an error so it can be found in the logs.
//
// # Data Errors (DATA001-DATA099)
//
//	DATA002 - Missing column: The dataset is missing a required column
//	          Action: Check the snapshot has Country, Book-Rating, Year-Of-Publication, Book-Title, Book-Author and Age
//	          Patterns: "dataset missing column"
//
//	DATA003 - Corrupt row: The dataset contains a row that could not be read
//	          Action: Re-export the dataset snapshot
//	          Patterns: "corrupt dataset row"
//
//	DATA001 - Data unavailable: The dataset could not be loaded
//	          Action: Check the configured data source and restart the service
//	          Patterns: "data unavailable"
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Invalid selection: A year or age parameter is malformed
//	         Action: Use a whole number for year and a number for age
//	         Patterns: "invalid selection"
//
//	SEL002 - Unknown view: The requested chart does not exist
//	         Action: Use one of choropleth, year-top, age-top, scatter, authors
//	         Patterns: "unknown view"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Unknown source: DATA_SOURCE names no registered source
//	         Action: Set DATA_SOURCE to parquet, csv, sqlite or postgres
//	         Patterns: "unknown data source"
//
// # Rendering and Throttling (RND001, RATE001)
//
//	RND001  - Busy: Too many charts are being drawn
//	          Patterns: "too many concurrent renders"
//
//	RATE001 - Rate limited: Too many requests
//	          Patterns: "rate limit"
//
// # Request Errors (REQ001-REQ099)
//
//	REQ001 - Request cancelled. Patterns: "context canceled"
//	REQ002 - Request timeout. Patterns: "context deadline exceeded"
//
// # Default Error (ERR000)
//
// Fallback when no specific pattern matches. Check the application logs for
// the original technical error.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, in table order, so text
// a user typed into a query parameter never decides the code. Errors without
// a sentinel in their chain fall back to patterns, matched case-insensitively
// using strings.Contains. The first match wins in both passes, and the more
// specific data errors are listed before DATA001.

package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type errorPattern struct {
	sentinel error
	pattern  string
	msg      UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages. Specific patterns come before general ones.
var errorPatterns = []errorPattern{
	// Data
	{
		sentinel: ErrMissingColumn,
		pattern:  "dataset missing column",
		msg: UserMessage{
			Message: "The dataset is missing a required column",
			Action:  "Check the snapshot has Country, Book-Rating, Year-Of-Publication, Book-Title, Book-Author and Age",
			Code:    "DATA002",
		},
	},
	{
		sentinel: ErrCorruptRow,
		pattern:  "corrupt dataset row",
		msg: UserMessage{
			Message: "The dataset contains a row that could not be read",
			Action:  "Re-export the dataset snapshot",
			Code:    "DATA003",
		},
	},
	{
		sentinel: ErrDataUnavailable,
		pattern:  "data unavailable",
		msg: UserMessage{
			Message: "The dataset could not be loaded",
			Action:  "Check the configured data source and restart the service",
			Code:    "DATA001",
		},
	},

	// Selection
	{
		sentinel: ErrInvalidSelection,
		pattern:  "invalid selection",
		msg: UserMessage{
			Message: "The selection is not valid",
			Action:  "Use a whole number for year and a number for age",
			Code:    "SEL001",
		},
	},
	{
		sentinel: ErrUnknownView,
		pattern:  "unknown view",
		msg: UserMessage{
			Message: "The requested chart does not exist",
			Action:  "Use one of choropleth, year-top, age-top, scatter, authors",
			Code:    "SEL002",
		},
	},

	// Source
	{
		sentinel: ErrUnknownSource,
		pattern:  "unknown data source",
		msg: UserMessage{
			Message: "The configured data source is not supported",
			Action:  "Set DATA_SOURCE to parquet, csv, sqlite or postgres",
			Code:    "SRC001",
		},
	},

	// Throttling
	{
		pattern:  "too many concurrent renders",
		msg: UserMessage{
			Message: "The server is busy drawing other charts",
			Action:  "Please wait a moment and try again",
			Code:    "RND001",
		},
	},
	{
		pattern:  "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},

	// Request lifecycle
	{
		sentinel: context.Canceled,
		pattern:  "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "REQ001",
		},
	},
	{
		sentinel: context.DeadlineExceeded,
		pattern:  "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Please try again later",
			Code:    "REQ002",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// It returns the first sentinel in err's chain, then the first
// case-insensitive pattern match, or the ERR000 fallback when nothing
// matches.
//
// Example:
//
//	msg := MapError(fmt.Errorf("%w: year %q", ErrInvalidSelection, "abc"))
//	// msg.Code == "SEL001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, ep := range errorPatterns {
		if ep.sentinel != nil && errors.Is(err, ep.sentinel) {
			return ep.msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}
