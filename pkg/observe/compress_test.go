package observe

import (
	"fmt"
	"strings"
	"testing"
)

func TestCompress_UnderThresholdUnchanged(t *testing.T) {
	exact := strings.Repeat("x", CompressionThreshold)
	res := Compress("Bash", ToolInput{Command: "ls"}, exact)
	if res.WasCompressed {
		t.Fatalf("output at threshold must not be compressed")
	}
	if res.Compressed != exact {
		t.Fatalf("output at threshold must be returned byte-for-byte")
	}
	if res.OriginalSize != CompressionThreshold {
		t.Fatalf("original size = %d, want %d", res.OriginalSize, CompressionThreshold)
	}
}

func TestCompress_CeilingAcrossKinds(t *testing.T) {
	blob := strings.Repeat("lorem ipsum dolores ", 300)
	for _, tool := range []string{"Read", "Bash", "Grep", "Glob", "Edit", "Write", "Mystery"} {
		res := Compress(tool, ToolInput{}, blob)
		if !res.WasCompressed {
			t.Fatalf("%s: oversized output must be compressed", tool)
		}
		if len(res.Compressed) > CompressedCeiling {
			t.Fatalf("%s: compressed length %d exceeds ceiling", tool, len(res.Compressed))
		}
		if res.OriginalSize != len(blob) {
			t.Fatalf("%s: original size = %d, want %d", tool, res.OriginalSize, len(blob))
		}
	}
}

func TestCompress_CommandKeepsErrorLines(t *testing.T) {
	var lines []string
	lines = append(lines, "building module 000 of the workspace tree")
	lines = append(lines, "Error: build failed")
	for i := 1; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("building module %03d of the workspace tree", i))
	}
	output := strings.Join(lines, "\n")
	if len(output) <= CompressionThreshold {
		t.Fatalf("fixture too small: %d", len(output))
	}

	if got := Classify("Bash", output); got != TypeProblem {
		t.Fatalf("classify = %q, want problem", got)
	}

	res := Compress("Bash", ToolInput{Command: "npm run build"}, output)
	if !res.WasCompressed {
		t.Fatalf("expected compression")
	}
	if !strings.Contains(res.Compressed, "Errors/Warnings:") {
		t.Fatalf("missing error section:\n%s", res.Compressed)
	}
	if !strings.Contains(res.Compressed, "Error: build failed") {
		t.Fatalf("error line lost:\n%s", res.Compressed)
	}
	if !strings.Contains(res.Compressed, "Command: npm run build") {
		t.Fatalf("command header lost:\n%s", res.Compressed)
	}
}

func TestCompress_ReadKeepsStructure(t *testing.T) {
	var lines []string
	lines = append(lines, "function loadConfig() { return cached }")
	for i := 0; i < 23; i++ {
		lines = append(lines, fmt.Sprintf("// section %02d keeps the runtime wiring notes aligned with the design", i))
	}
	lines = append(lines, "function persistState() { return flushed }")
	for i := 23; i < 47; i++ {
		lines = append(lines, fmt.Sprintf("// section %02d keeps the runtime wiring notes aligned with the design", i))
	}
	lines = append(lines, "function renderView() { return painted }")
	output := strings.Join(lines, "\n")
	if len(output) <= CompressionThreshold {
		t.Fatalf("fixture too small: %d", len(output))
	}
	if n := len(lines); n != 50 {
		t.Fatalf("fixture has %d lines, want 50", n)
	}

	res := Compress("Read", ToolInput{FilePath: "src/view.js"}, output)
	if !res.WasCompressed {
		t.Fatalf("expected compression")
	}
	if !strings.Contains(res.Compressed, "File: src/view.js (50 lines)") {
		t.Fatalf("line-count header wrong:\n%s", res.Compressed)
	}

	var functionsLine string
	for _, line := range strings.Split(res.Compressed, "\n") {
		if strings.HasPrefix(line, "Functions: ") {
			functionsLine = line
			break
		}
	}
	if functionsLine != "Functions: loadConfig, persistState, renderView" {
		t.Fatalf("functions section = %q", functionsLine)
	}
}

func TestCompress_GlobStructuredList(t *testing.T) {
	paths := make([]string, 0, 150)
	for i := 0; i < 110; i++ {
		paths = append(paths, fmt.Sprintf("src/api/handler_%03d.go", i))
	}
	for i := 0; i < 40; i++ {
		paths = append(paths, fmt.Sprintf("src/web/page_%03d.go", i))
	}
	quoted := make([]string, len(paths))
	for i, p := range paths {
		quoted[i] = fmt.Sprintf("%q", p)
	}
	output := "[" + strings.Join(quoted, ",") + "]"
	if len(output) <= CompressionThreshold {
		t.Fatalf("fixture too small: %d", len(output))
	}

	res := Compress("Glob", ToolInput{Pattern: "**/*.go"}, output)
	if !strings.Contains(res.Compressed, "Found 150 files in 2 directories") {
		t.Fatalf("aggregate header wrong:\n%s", res.Compressed)
	}
	if !strings.Contains(res.Compressed, "src/api (110 files)") {
		t.Fatalf("largest directory missing:\n%s", res.Compressed)
	}
}

func TestCompress_GlobFallsBackToLines(t *testing.T) {
	var lines []string
	for i := 0; i < 150; i++ {
		lines = append(lines, fmt.Sprintf("src/api/handler_%03d.go", i))
	}
	output := strings.Join(lines, "\n")
	if len(output) <= CompressionThreshold {
		t.Fatalf("fixture too small: %d", len(output))
	}

	res := Compress("Glob", ToolInput{Pattern: "**/*.go"}, output)
	if !strings.Contains(res.Compressed, "Found 150 files in 1 directories") {
		t.Fatalf("newline fallback failed:\n%s", res.Compressed)
	}
}

func TestCompress_EditKeepsTargetAndPrefix(t *testing.T) {
	output := strings.Repeat("patched content echo ", 200)
	res := Compress("Edit", ToolInput{FilePath: "src/app.ts"}, output)
	if !strings.Contains(res.Compressed, "File: src/app.ts") {
		t.Fatalf("target file missing:\n%s", res.Compressed)
	}
	if !strings.Contains(res.Compressed, "Status: edited successfully") {
		t.Fatalf("status marker missing:\n%s", res.Compressed)
	}
	if len(res.Compressed) > CompressedCeiling {
		t.Fatalf("compressed length %d exceeds ceiling", len(res.Compressed))
	}
}

func TestCompress_GenericTruncatesWithMarker(t *testing.T) {
	output := strings.Repeat("telemetry frame 0xA1 ", 300)
	res := Compress("Mystery", ToolInput{}, output)
	if !res.WasCompressed {
		t.Fatalf("expected compression")
	}
	if len(res.Compressed) != CompressedCeiling {
		t.Fatalf("length = %d, want exactly the ceiling", len(res.Compressed))
	}
	if !strings.HasSuffix(res.Compressed, "... [truncated]") {
		t.Fatalf("missing truncation marker: %q", res.Compressed[len(res.Compressed)-30:])
	}
}

func TestStatsFor_Arithmetic(t *testing.T) {
	s := StatsFor(4000, 200)
	if s.Ratio != 20 || s.Saved != 3800 || s.SavedPercent != 95 {
		t.Fatalf("stats = %+v", s)
	}
	if s := StatsFor(100, 0); s.Ratio != 0 || s.Saved != 100 || s.SavedPercent != 100 {
		t.Fatalf("zero compressed size stats = %+v", s)
	}
	if s := StatsFor(0, 0); s.Ratio != 0 || s.Saved != 0 || s.SavedPercent != 0 {
		t.Fatalf("zero input stats = %+v", s)
	}
}
