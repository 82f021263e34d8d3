package observe

import (
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// CompressionThreshold is the raw-output size above which a tool's
	// output gets compressed instead of stored verbatim.
	CompressionThreshold = 3000
	// CompressedCeiling bounds the rendered summary.
	CompressedCeiling = 2000

	truncationMarker = "... [truncated]"
)

// Compress turns oversized tool output into a compact structured summary.
// Output at or under the threshold is returned byte-for-byte unchanged.
// Oversized input is never an error; it is always reduced, never rejected.
func Compress(toolName string, input ToolInput, output string) CompressionResult {
	if len(output) <= CompressionThreshold {
		return CompressionResult{Compressed: output, OriginalSize: len(output)}
	}

	var rendered string
	switch KindOf(toolName) {
	case KindRead:
		rendered = renderRead(input, output)
	case KindCommand:
		rendered = renderCommand(input, output)
	case KindSearchContent:
		rendered = renderContentSearch(input, output)
	case KindSearchGlob:
		rendered = renderGlobSearch(input, output)
	case KindEdit, KindWrite:
		rendered = renderEdit(input, output)
	case KindUnknown:
		rendered = renderGeneric(output)
	}

	return CompressionResult{
		Compressed:    truncate(rendered, CompressedCeiling),
		WasCompressed: true,
		OriginalSize:  len(output),
	}
}

// renderRead keeps the structural skeleton of a file read: declared symbols
// and work markers, plus a few raw lines for grounding.
func renderRead(input ToolInput, output string) string {
	lines := strings.Split(output, "\n")
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s (%d lines)\n", fallback(input.FilePath, "file"), len(lines))
	writeBucket(&b, "Imports", ExtractImports(output), 5)
	writeBucket(&b, "Exports", ExtractExports(output), 5)
	writeBucket(&b, "Functions", ExtractFunctions(output), 10)
	writeBucket(&b, "Classes", ExtractClasses(output), 5)
	writeBucket(&b, "TODOs", ExtractTODOs(output), 5)
	b.WriteString("\nFirst 10 lines:\n")
	b.WriteString(strings.Join(headLines(lines, 10), "\n"))
	b.WriteString("\n...\nLast 5 lines:\n")
	b.WriteString(strings.Join(tailLines(lines, 5), "\n"))
	return b.String()
}

// renderCommand keeps the command itself plus the lines that carry signal:
// failures first, then successes, then a bounded sample of the raw output.
func renderCommand(input ToolInput, output string) string {
	lines := strings.Split(output, "\n")
	var errLines, okLines []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "error") || strings.Contains(lower, "fail") || strings.Contains(lower, "warning"):
			errLines = append(errLines, line)
		case strings.Contains(lower, "success") || strings.Contains(lower, "passed") || strings.Contains(lower, "completed"):
			okLines = append(okLines, line)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Command: %s\n", firstLine(fallback(input.Command, "command")))
	if len(errLines) > 0 {
		b.WriteString("\nErrors/Warnings:\n")
		for _, line := range headLines(errLines, 10) {
			b.WriteString(line + "\n")
		}
	}
	if len(okLines) > 0 {
		b.WriteString("\nSuccesses:\n")
		for _, line := range headLines(okLines, 5) {
			b.WriteString(line + "\n")
		}
	}
	fmt.Fprintf(&b, "\nOutput: %d lines\n", len(lines))
	if len(lines) > 20 {
		b.WriteString(strings.Join(headLines(lines, 10), "\n"))
		b.WriteString("\n...\n")
		b.WriteString(strings.Join(tailLines(lines, 5), "\n"))
	} else {
		b.WriteString(output)
	}
	return b.String()
}

// renderContentSearch aggregates grep-style match lines into file counts and
// a bounded sample of raw matches.
func renderContentSearch(input ToolInput, output string) string {
	matches := nonEmptyLines(output)
	seen := map[string]struct{}{}
	files := []string{}
	for _, line := range matches {
		if i := strings.Index(line, ":"); i > 0 {
			f := line[:i]
			if _, ok := seen[f]; !ok {
				seen[f] = struct{}{}
				files = append(files, f)
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pattern: %q\n", fallback(input.Pattern, "pattern"))
	fmt.Fprintf(&b, "Matches: %d in %d files\n", len(matches), len(files))
	if len(files) > 0 {
		writeBucket(&b, "Files", files, 10)
	}
	b.WriteString("\nFirst matches:\n")
	for _, line := range headLines(matches, 10) {
		b.WriteString(line + "\n")
	}
	if overflow := len(matches) - 10; overflow > 0 {
		fmt.Fprintf(&b, "... (+%d more matches)\n", overflow)
	}
	return b.String()
}

// renderGlobSearch groups a file listing by directory. The listing is parsed
// as a JSON string array when possible, else split on newlines.
func renderGlobSearch(input ToolInput, output string) string {
	files := parseFileList(output)
	counts := map[string]int{}
	dirs := []string{}
	for _, f := range files {
		dir := path.Dir(f)
		if _, ok := counts[dir]; !ok {
			dirs = append(dirs, dir)
		}
		counts[dir]++
	}
	sort.SliceStable(dirs, func(i, j int) bool { return counts[dirs[i]] > counts[dirs[j]] })

	var b strings.Builder
	fmt.Fprintf(&b, "Pattern: %s\n", fallback(input.Pattern, "pattern"))
	fmt.Fprintf(&b, "Found %d files in %d directories\n", len(files), len(dirs))
	if len(dirs) > 0 {
		b.WriteString("\nTop directories:\n")
		for _, dir := range headLines(dirs, 5) {
			fmt.Fprintf(&b, "  %s (%d files)\n", dir, counts[dir])
		}
	}
	if len(files) > 0 {
		names := make([]string, 0, len(files))
		for _, f := range files {
			names = append(names, path.Base(f))
		}
		b.WriteString("\nSample files:\n")
		b.WriteString("  " + strings.Join(headLines(names, 10), ", "))
		if overflow := len(names) - 10; overflow > 0 {
			fmt.Fprintf(&b, " (+%d more)", overflow)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// renderEdit keeps only the target and a short prefix; edit tool output is
// mostly an echo of content already on disk.
func renderEdit(input ToolInput, output string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", fallback(input.FilePath, "file"))
	b.WriteString("Status: edited successfully\n\n")
	b.WriteString(prefixChars(output, 500))
	return b.String()
}

// renderGeneric passes short output through and samples long output.
func renderGeneric(output string) string {
	lines := strings.Split(output, "\n")
	if len(lines) <= 30 {
		return output
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Output: %d lines\n\n", len(lines))
	b.WriteString(strings.Join(headLines(lines, 15), "\n"))
	b.WriteString("\n...\n")
	b.WriteString(strings.Join(tailLines(lines, 10), "\n"))
	return b.String()
}

// CompressionStats summarizes the size effect of one compression pass.
type CompressionStats struct {
	Ratio        float64
	Saved        int
	SavedPercent float64
}

// StatsFor computes the achieved ratio and savings for a pass that took
// originalSize bytes down to compressedSize bytes.
func StatsFor(originalSize, compressedSize int) CompressionStats {
	s := CompressionStats{Saved: originalSize - compressedSize}
	if compressedSize > 0 {
		s.Ratio = float64(originalSize) / float64(compressedSize)
	}
	if originalSize > 0 {
		s.SavedPercent = float64(s.Saved) / float64(originalSize) * 100
	}
	return s
}

// writeBucket renders one labeled extractor result list, capped for display.
func writeBucket(b *strings.Builder, label string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	shown := items
	if len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprintf(b, "%s: %s", label, strings.Join(shown, ", "))
	if extra := len(items) - len(shown); extra > 0 {
		fmt.Fprintf(b, " (+%d more)", extra)
	}
	b.WriteString("\n")
}

// parseFileList decodes a JSON string array, falling back to newline
// splitting when the payload is not well-formed JSON.
func parseFileList(output string) []string {
	trimmed := strings.TrimSpace(output)
	var files []string
	if err := json.Unmarshal([]byte(trimmed), &files); err == nil {
		out := files[:0]
		for _, f := range files {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
		return out
	}
	return nonEmptyLines(output)
}

func headLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[:n]
}

func tailLines(lines []string, n int) []string {
	if len(lines) <= n {
		return lines
	}
	return lines[len(lines)-n:]
}

func nonEmptyLines(s string) []string {
	out := []string{}
	for _, line := range strings.Split(s, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func fallback(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

// truncate hard-caps s at limit bytes, appending a marker when it cuts. The
// cut backs up to a rune boundary so the result stays valid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit - len(truncationMarker)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}

// prefixChars keeps the first n bytes of s, backing up to a rune boundary.
func prefixChars(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
