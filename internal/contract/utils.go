package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/mkohari/skillscope/schema"
)

// Color variables for console output.
var (
	ExcellentColor = color.New(color.FgGreen, color.Bold) // strong, healthy signal
	GoodColor      = color.New(color.FgCyan)              // solid, no action needed
	FairColor      = color.New(color.FgYellow)            // standard caution
	NeedsWorkColor = color.New(color.FgRed, color.Bold)   // attention required
	NoDataColor    = color.New(color.Faint)               // insufficient data
)

// GetColorLabel returns a colored text label for console output (table).
// It uses schema.GetPlainLabel to determine the string, then applies the
// appropriate color.
func GetColorLabel(score float64, status schema.ScoreStatus) string {
	if status == schema.StatusInsufficientData {
		return NoDataColor.Sprint("No Data")
	}

	text := schema.GetPlainLabel(score)
	switch text {
	case "Excellent":
		return ExcellentColor.Sprint(text)
	case "Good":
		return GoodColor.Sprint(text)
	case "Fair":
		return FairColor.Sprint(text)
	default: // "Needs Work"
		return NeedsWorkColor.Sprint(text)
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on
// the provided file path. It falls back to os.Stdout when the path is empty.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetTrendsDBFilePath returns the path to the SQLite DB file for the trend
// store.
func GetTrendsDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".skillscope_trends.db"
	}
	return filepath.Join(homeDir, ".skillscope_trends.db")
}

// TruncateText truncates a string to a maximum width with an ellipsis suffix.
// Requires maxWidth > 3 so there is room for both the ellipsis and content.
func TruncateText(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return s
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
