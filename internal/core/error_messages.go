// Package core provides the preview service behind the web and terminal UIs.
//
// # Error Codes Reference
//
// Technical errors are mapped to user-friendly messages with a code users
// can quote to support.
//
// # Read Errors (READ001-READ099)
//
//	READ001 - Read failed: The file could not be read
//	          Action: Check the file is still there and readable, then pick it again
//	          Patterns: "read error"
//
//	READ002 - File too large: File exceeds the preview size limit
//	          Action: Preview a smaller extract of the file
//	          Patterns: "file too large"
//
//	READ003 - Unsupported file: Only .csv and .gz files can be previewed
//	          Action: Export the sheet as CSV and pick it again
//	          Patterns: "unsupported file type"
//
// # Parse Errors (PARSE001-PARSE099)
//
//	PARSE001 - Invalid CSV: File is not valid comma-separated data
//	           Action: Check quoting, then save the file as CSV again
//	           Patterns: "invalid csv", "parse error"
//
//	PARSE002 - Bad payload: The file contents could not be decoded
//	           Action: Pick the file again
//	           Patterns: "malformed data url"
//
//	PARSE003 - Bad archive: Compressed file is damaged
//	           Action: Re-create the .gz file or preview the plain CSV
//	           Patterns: "gzip"
//
//	PARSE004 - Archive too large: Compressed file expands past the limit
//	           Action: Preview a smaller extract of the file
//	           Patterns: "decompressed payload too large"
//
// # File Errors (FILE001-FILE099)
//
//	FILE004 - No file: No file was selected
//	          Action: Please select a CSV file to preview
//	          Patterns: "no file provided"
//
// # Selection Errors (SEL001-SEL099)
//
//	SEL001 - Unknown column: The chosen email column is not in the file
//	         Action: Pick one of the listed columns
//	         Patterns: "unknown column", "unknown option"
//
//	SEL002 - Invalid range: Start must not be greater than stop
//	         Action: Drag the handles so start is at or before stop
//	         Patterns: "invalid range"
//
//	SEL003 - Nothing loaded: No file has been previewed yet
//	         Action: Pick a CSV file first
//	         Patterns: "no table loaded"
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired: The preview session was not found
//	         Action: Reload the page and pick the file again
//	         Patterns: "workspace not found"
//
// # Request Errors (UPL002-UPL099)
//
//	UPL002 - System busy: Too many previews in progress
//	         Action: Please wait a moment and try again
//	         Patterns: "too many previews"
//
//	UPL004 - Request cancelled: Request was cancelled
//	         Action: Please try again
//	         Patterns: "context canceled"
//
//	UPL005 - Request timeout: Request timed out
//	         Action: Try a smaller file or check your connection
//	         Patterns: "context deadline exceeded"
//
// # History Errors (DB004-DB099)
//
//	DB004 - Connection refused: Unable to reach the history database
//	        Action: Please try again in a few moments
//	        Patterns: "connection refused"
//
// # Rate Limiting (RATE001-RATE099)
//
//	RATE001 - Rate limited: Too many requests
//	          Action: Please wait a moment before trying again
//	          Patterns: "rate limit"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Please try again or contact support
//
// # Pattern Matching
//
// Patterns are matched case-insensitively with strings.Contains and the
// first match wins. Pipeline errors nest ("read error: a.csv: context
// canceled"), so the specific causes are listed before the generic
// "read error" and "parse error" stages.
package core

import (
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Support reference
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns is ordered: specific causes first, pipeline stages last.
var errorPatterns = []errorPattern{
	// =========================================================================
	// Causes (READ002-READ003, PARSE002-PARSE004, UPL004-UPL005)
	// =========================================================================
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the preview size limit",
			Action:  "Preview a smaller extract of the file",
			Code:    "READ002",
		},
	},
	{
		pattern: "unsupported file type",
		msg: UserMessage{
			Message: "Only .csv and .gz files can be previewed",
			Action:  "Export the sheet as CSV and pick it again",
			Code:    "READ003",
		},
	},
	{
		pattern: "malformed data url",
		msg: UserMessage{
			Message: "The file contents could not be decoded",
			Action:  "Pick the file again",
			Code:    "PARSE002",
		},
	},
	{
		pattern: "decompressed payload too large",
		msg: UserMessage{
			Message: "Compressed file expands past the preview size limit",
			Action:  "Preview a smaller extract of the file",
			Code:    "PARSE004",
		},
	},
	{
		pattern: "gzip",
		msg: UserMessage{
			Message: "Compressed file is damaged",
			Action:  "Re-create the .gz file or preview the plain CSV",
			Code:    "PARSE003",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Request timed out",
			Action:  "Try a smaller file or check your connection",
			Code:    "UPL005",
		},
	},

	// =========================================================================
	// Pipeline stages (READ001, PARSE001)
	// =========================================================================
	{
		pattern: "invalid csv",
		msg: UserMessage{
			Message: "File is not valid comma-separated data",
			Action:  "Check quoting, then save the file as CSV again",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "parse error",
		msg: UserMessage{
			Message: "File is not valid comma-separated data",
			Action:  "Check quoting, then save the file as CSV again",
			Code:    "PARSE001",
		},
	},
	{
		pattern: "read error",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check the file is still there and readable, then pick it again",
			Code:    "READ001",
		},
	},

	// =========================================================================
	// Request and selection errors
	// =========================================================================
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a CSV file to preview",
			Code:    "FILE004",
		},
	},
	{
		pattern: "unknown column",
		msg: UserMessage{
			Message: "The chosen email column is not in the file",
			Action:  "Pick one of the listed columns",
			Code:    "SEL001",
		},
	},
	{
		pattern: "unknown option",
		msg: UserMessage{
			Message: "The chosen email column is not in the file",
			Action:  "Pick one of the listed columns",
			Code:    "SEL001",
		},
	},
	{
		pattern: "invalid range",
		msg: UserMessage{
			Message: "Start must not be greater than stop",
			Action:  "Drag the handles so start is at or before stop",
			Code:    "SEL002",
		},
	},
	{
		pattern: "no table loaded",
		msg: UserMessage{
			Message: "No file has been previewed yet",
			Action:  "Pick a CSV file first",
			Code:    "SEL003",
		},
	},
	{
		pattern: "workspace not found",
		msg: UserMessage{
			Message: "The preview session was not found",
			Action:  "Reload the page and pick the file again",
			Code:    "SES001",
		},
	},
	{
		pattern: "too many previews",
		msg: UserMessage{
			Message: "Too many previews in progress",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to reach the history database",
			Action:  "Please try again in a few moments",
			Code:    "DB004",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts a technical error into a UserMessage. A nil error maps
// to the zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders an error as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err matches a known pattern rather than the
// ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
