package core

// error_messages.go maps errors to user-facing messages with support codes.
//
// Codes by category:
//
//	FILE001 - File too large          (gridsource.ErrFileTooLarge)
//	FILE002 - File could not be read  (gridsource.ErrDecode)
//	FILE003 - Unsupported format      (gridsource.ErrUnsupportedFormat)
//	FILE004 - No file                 (ErrNoFile)
//	FILE005 - No header row           (ErrNoHeaders)
//	PRF001  - Profile not found       (ErrProfileNotFound)
//	PRF002  - Profile name required   (ErrNameRequired)
//	RUL001  - Invalid rule            (ErrInvalidRule)
//	RUL002  - Rule not found          (ErrRuleNotFound)
//	UPL002  - System busy             (ErrTooManyAnalyses)
//	UPL004  - Request cancelled       (context.Canceled)
//	UPL005  - Request timed out       (context.DeadlineExceeded)
//	RATE001 - Rate limited            (ErrRateLimited)
//	REQ001  - Malformed request body  (ErrInvalidRequest)
//	ERR000  - Anything else
//
// Sentinels are matched with errors.Is in table order, so wrapped errors keep
// their code. Errors that arrive as plain text (from a proxy or an older
// client) fall back to case-insensitive substring patterns.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/sheetguard/internal/gridsource"
)

// ErrRateLimited is returned when a client exceeds its request budget.
var ErrRateLimited = errors.New("rate limit exceeded")

// UserMessage is an error as shown to users.
type UserMessage struct {
	Message string `json:"message"` // what happened
	Action  string `json:"action"`  // what to do about it
	Code    string `json:"code"`    // support reference
}

type errorMapping struct {
	target  error
	pattern string
	msg     UserMessage
}

var errorMappings = []errorMapping{
	{
		target:  gridsource.ErrFileTooLarge,
		pattern: "file too large",
		msg: UserMessage{
			Message: "File exceeds the maximum size limit",
			Action:  "Split the file into smaller files",
			Code:    "FILE001",
		},
	},
	{
		target:  gridsource.ErrUnsupportedFormat,
		pattern: "unsupported file format",
		msg: UserMessage{
			Message: "This file format is not supported",
			Action:  "Save the file as .xlsx or .csv and try again",
			Code:    "FILE003",
		},
	},
	{
		target:  gridsource.ErrDecode,
		pattern: "could not decode file",
		msg: UserMessage{
			Message: "The file could not be read",
			Action:  "Check that the file is not corrupted or password protected",
			Code:    "FILE002",
		},
	},
	{
		target:  ErrNoFile,
		pattern: "no file provided",
		msg: UserMessage{
			Message: "No file was selected",
			Action:  "Please select a spreadsheet to upload",
			Code:    "FILE004",
		},
	},
	{
		target:  ErrNoHeaders,
		pattern: "no header row",
		msg: UserMessage{
			Message: "No column headers were found in the file",
			Action:  "Check that the file is not empty",
			Code:    "FILE005",
		},
	},
	{
		target:  ErrProfileNotFound,
		pattern: "profile not found",
		msg: UserMessage{
			Message: "Validation profile not found",
			Action:  "Select another profile or create a new one",
			Code:    "PRF001",
		},
	},
	{
		target:  ErrNameRequired,
		pattern: "profile name is required",
		msg: UserMessage{
			Message: "Profile name is required",
			Action:  "Enter a name for the profile",
			Code:    "PRF002",
		},
	},
	{
		target:  ErrRuleNotFound,
		pattern: "rule not found",
		msg: UserMessage{
			Message: "Rule not found in this profile",
			Action:  "Reload the profile and try again",
			Code:    "RUL002",
		},
	},
	{
		target:  ErrInvalidRule,
		pattern: "invalid rule",
		msg: UserMessage{
			Message: "The rule is not valid",
			Action:  "Choose a column and rule type, and fill in the value for format and list rules",
			Code:    "RUL001",
		},
	},
	{
		target:  ErrTooManyAnalyses,
		pattern: "too many analyses",
		msg: UserMessage{
			Message: "System is busy processing other files",
			Action:  "Please wait a moment and try again",
			Code:    "UPL002",
		},
	},
	{
		target:  context.Canceled,
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Request was cancelled",
			Action:  "Please try again",
			Code:    "UPL004",
		},
	},
	{
		target:  context.DeadlineExceeded,
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Analysis timed out",
			Action:  "Try a smaller file or try again later",
			Code:    "UPL005",
		},
	},
	{
		target:  ErrRateLimited,
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Too many requests",
			Action:  "Please wait a moment before trying again",
			Code:    "RATE001",
		},
	},
	{
		target:  ErrInvalidRequest,
		pattern: "invalid request body",
		msg: UserMessage{
			Message: "The request could not be understood",
			Action:  "Check the submitted data and try again",
			Code:    "REQ001",
		},
	},
}

// defaultMessage is the ERR000 fallback. The technical error is only in the logs.
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user-facing message. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.msg
		}
	}

	text := strings.ToLower(err.Error())
	for _, m := range errorMappings {
		if strings.Contains(text, m.pattern) {
			return m.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
