package observe

import (
	"fmt"
	"strings"
)

// Summarize produces the one-line caption used as an observation's title.
// It always reads the uncompressed output so line and match counts stay
// accurate. Missing input fields degrade to literal placeholders.
func Summarize(toolName string, input ToolInput, output string) string {
	switch KindOf(toolName) {
	case KindRead:
		return fmt.Sprintf("Read %s (%d lines)", fallback(input.FilePath, "file"), lineCount(output))
	case KindCommand:
		cmd := clip(firstLine(fallback(input.Command, "command")), 60)
		if containsAny(strings.ToLower(output), problemMarkers) {
			return "Command failed: " + cmd
		}
		return "Ran: " + cmd
	case KindSearchContent:
		return fmt.Sprintf("Found %d matches for %q", len(nonEmptyLines(output)), fallback(input.Pattern, "pattern"))
	case KindSearchGlob:
		return fmt.Sprintf("Located %d files for %q", len(parseFileList(output)), fallback(input.Pattern, "pattern"))
	case KindEdit:
		return "Edited " + fallback(input.FilePath, "file")
	case KindWrite:
		return "Wrote " + fallback(input.FilePath, "file")
	}
	return fallback(toolName, "tool") + " completed"
}

func lineCount(s string) int {
	return len(strings.Split(s, "\n"))
}

// clip bounds a caption fragment without the heavyweight truncation marker.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(prefixChars(s, n)) + "..."
}
