package cli

import (
	"fmt"
	"io"
	"os"
)

// Color codes for terminal output
const (
	ColorReset = "\033[0m"
	ColorRed   = "\033[31m"
	ColorGreen = "\033[32m"
)

// colorEnabled is false when NO_COLOR is set.
var colorEnabled = os.Getenv("NO_COLOR") == ""

// Colorize returns text wrapped in color when colors are enabled.
func Colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

// Success prints a success line.
func Success(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", Colorize("✓", ColorGreen), message)
}

// Failure prints an error line.
func Failure(w io.Writer, message string) {
	fmt.Fprintf(w, "%s %s\n", Colorize("✗", ColorRed), message)
}
