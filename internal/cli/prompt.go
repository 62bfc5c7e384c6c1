package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// PromptResult contains the result of a confirmation prompt.
type PromptResult struct {
	// Accepted is true if the user accepted the prompt (typed "y" or "yes").
	Accepted bool
	// Cancelled is true if reading input failed.
	Cancelled bool
}

// ConfirmPrompt shows a yes/no question and reads one line of input.
// The prompt defaults to "No": empty input, EOF, and anything but a
// yes answer declines.
func ConfirmPrompt(writer io.Writer, reader io.Reader, title, message string) PromptResult {
	fmt.Fprintf(writer, "\n%s\n", title)
	fmt.Fprintf(writer, "? %s [y/N] ", message)

	scanner := bufio.NewScanner(reader)
	if !scanner.Scan() {
		if scanner.Err() != nil {
			return PromptResult{Cancelled: true}
		}
		// EOF without error, the user pressed Ctrl+D.
		return PromptResult{Accepted: false}
	}

	switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
	case "y", "yes":
		return PromptResult{Accepted: true}
	default:
		return PromptResult{Accepted: false}
	}
}
