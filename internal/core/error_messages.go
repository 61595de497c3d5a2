package core

// error_messages.go maps technical errors to user-facing messages with a code
// users can quote to support.
//
// # Error Codes Reference
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large: upload exceeds the configured size limit
//	FILE002 - Unsupported type: not a .csv, .csv.gz, .csv.bz2, .csv.xz or .csv.zst file
//	FILE003 - Read error: the upload could not be read
//	FILE004 - Decompression: the compressed upload is corrupt
//	FILE006 - No file: the request carried no file
//
// # Data Errors (DATA001-DATA099)
//
//	DATA001 - No data: the file is empty or has no rows matching the header (HTTP 422)
//
// # Upload Errors (UPL001-UPL099)
//
//	UPL002 - System busy: every ingest slot is taken
//	UPL004 - Request cancelled
//	UPL005 - Request timeout
//
// # Session Errors (SES001-SES099)
//
//	SES001 - No dataset: nothing has been uploaded in this session yet
//
// # Chart Errors (CHART001-CHART099)
//
//	CHART001 - Unknown chart type
//	CHART002 - Unknown field, or nothing numeric to plot
//
// # Request Errors
//
//	RATE001 - Rate limited
//	AUTH001 - Missing or invalid API key
//	REQ001  - Malformed request
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the logs for the technical error.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is. Errors that only carry
// text (from libraries or other processes) fall through to case-insensitive
// substring patterns. In both tables the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/insightboard/internal/chart"
	"github.com/JonMunkholm/insightboard/internal/dataset"
	"github.com/JonMunkholm/insightboard/internal/export"
)

var (
	// ErrNoFile is returned when an upload request carries no file.
	ErrNoFile = errors.New("no file provided")
	// ErrEmptyFile marks zero-byte uploads. It is always wrapped together
	// with dataset.ErrNoData.
	ErrEmptyFile = errors.New("empty file")
	// ErrBadRequest marks malformed request parameters.
	ErrBadRequest = errors.New("bad request")
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
	Status  int    `json:"-"` // HTTP status for API responses
}

type errorSentinel struct {
	target error
	msg    UserMessage
}

var (
	msgFileTooLarge = UserMessage{
		Message: "File exceeds the maximum upload size",
		Action:  "Upload a smaller file or compress it first",
		Code:    "FILE001",
		Status:  http.StatusRequestEntityTooLarge,
	}
	msgUnsupported = UserMessage{
		Message: "This file type is not supported",
		Action:  "Upload a .csv file, optionally compressed as .gz, .bz2, .xz or .zst",
		Code:    "FILE002",
		Status:  http.StatusUnsupportedMediaType,
	}
	msgReadError = UserMessage{
		Message: "The file could not be read",
		Action:  "Please try uploading again",
		Code:    "FILE003",
		Status:  http.StatusBadRequest,
	}
	msgDecompress = UserMessage{
		Message: "The compressed file appears to be corrupt",
		Action:  "Check the archive or upload the plain CSV",
		Code:    "FILE004",
		Status:  http.StatusBadRequest,
	}
	msgNoFile = UserMessage{
		Message: "No file was selected",
		Action:  "Please select a CSV file to upload",
		Code:    "FILE006",
		Status:  http.StatusBadRequest,
	}
	msgNoData = UserMessage{
		Message: "No data rows were found in the file",
		Action:  "Check that the file has a header line and rows with the same number of columns",
		Code:    "DATA001",
		Status:  http.StatusUnprocessableEntity,
	}
	msgBusy = UserMessage{
		Message: "System is busy processing other uploads",
		Action:  "Please wait a moment and try again",
		Code:    "UPL002",
		Status:  http.StatusServiceUnavailable,
	}
	msgCancelled = UserMessage{
		Message: "Request was cancelled",
		Action:  "Please try again",
		Code:    "UPL004",
		Status:  http.StatusRequestTimeout,
	}
	msgTimeout = UserMessage{
		Message: "Request timed out",
		Action:  "Try uploading a smaller file or check your connection",
		Code:    "UPL005",
		Status:  http.StatusGatewayTimeout,
	}
	msgNoDataset = UserMessage{
		Message: "No dataset has been uploaded yet",
		Action:  "Upload a CSV file to get started",
		Code:    "SES001",
		Status:  http.StatusNotFound,
	}
	msgChartType = UserMessage{
		Message: "Unknown chart type",
		Action:  "Choose one of bar, line, area, pie, scatter, radar, composed or treemap",
		Code:    "CHART001",
		Status:  http.StatusBadRequest,
	}
	msgChartField = UserMessage{
		Message: "The chart cannot be drawn from the selected fields",
		Action:  "Pick fields that exist in the dataset and a numeric measure",
		Code:    "CHART002",
		Status:  http.StatusBadRequest,
	}
	msgRateLimited = UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
		Status:  http.StatusTooManyRequests,
	}
	msgAuth = UserMessage{
		Message: "Authentication required",
		Action:  "Provide a valid API key",
		Code:    "AUTH001",
		Status:  http.StatusUnauthorized,
	}
	msgBadRequest = UserMessage{
		Message: "The request was not understood",
		Action:  "Check the request parameters and try again",
		Code:    "REQ001",
		Status:  http.StatusBadRequest,
	}
)

// errorSentinels is consulted before the text patterns.
var errorSentinels = []errorSentinel{
	{ErrFileTooLarge, msgFileTooLarge},
	{ErrUnsupportedFile, msgUnsupported},
	{ErrDecompress, msgDecompress},
	{ErrNoFile, msgNoFile},
	{dataset.ErrNoData, msgNoData},
	{ErrTooManyIngests, msgBusy},
	{ErrNoDataset, msgNoDataset},
	{chart.ErrUnknownType, msgChartType},
	{chart.ErrUnknownField, msgChartField},
	{chart.ErrNothingToPlot, msgChartField},
	{ErrBadRequest, msgBadRequest},
	{export.ErrUnknownFormat, msgBadRequest},
	{context.Canceled, msgCancelled},
	{context.DeadlineExceeded, msgTimeout},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps error text (case-insensitive) to user messages.
// Specific patterns must come before general ones.
var errorPatterns = []errorPattern{
	{"file too large", msgFileTooLarge},
	{"request body too large", msgFileTooLarge},
	{"unsupported file type", msgUnsupported},
	{"decompression failed", msgDecompress},
	{"empty file", msgNoData},
	{"no file provided", msgNoFile},
	{"no such file", msgNoFile},
	{"read source", msgReadError},
	{"no data rows", msgNoData},
	{"too many uploads", msgBusy},
	{"no dataset", msgNoDataset},
	{"unknown chart type", msgChartType},
	{"unknown field", msgChartField},
	{"context canceled", msgCancelled},
	{"context deadline exceeded", msgTimeout},
	{"rate limit", msgRateLimited},
	{"api key", msgAuth},
	{"unauthorized", msgAuth},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError converts a technical error to a user-friendly message.
// A *UserError keeps the message it was built with.
//
// Example:
//
//	_, err := svc.Ingest(ctx, sid, "empty.csv", r, 0)
//	msg := MapError(err)
//	// msg.Code == "DATA001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var ue *UserError
	if errors.As(err, &ue) {
		return ue.User
	}

	for _, s := range errorSentinels {
		if errors.Is(err, s.target) {
			return s.msg
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

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with the message shown to users.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

// RateLimitError builds the error returned to throttled clients.
func RateLimitError() *UserError {
	return &UserError{Technical: errors.New("rate limit exceeded"), User: msgRateLimited}
}

// AuthError builds the error returned for missing or wrong API keys.
func AuthError() *UserError {
	return &UserError{Technical: errors.New("invalid or missing api key"), User: msgAuth}
}
