package outwriter

import (
	"os"

	"golang.org/x/term"
)

// getMaxExcerptWidth calculates the maximum width for evidence excerpts in
// table output based on terminal width.
func getMaxExcerptWidth() int {
	// Get terminal width
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve space for the session/tool/timestamp prefix plus table
	// borders, separators, and padding
	available := termWidth - 45
	if available < 20 {
		// Minimum reasonable excerpt width
		return 20
	}
	if available > 100 {
		// Maximum excerpt width to prevent unreadable lines
		return 100
	}
	return available
}
