package observe

import (
	"regexp"
	"strings"
)

// extractionKind names the bucket a pattern feeds.
type extractionKind int

const (
	extractImports extractionKind = iota
	extractExports
	extractFunctions
	extractClasses
	extractTODOs
)

// codePattern couples one compiled pattern with its bucket. group selects the
// submatch kept as the result; 0 keeps the whole match. New language
// conventions are added as table rows, not new code paths.
type codePattern struct {
	kind  extractionKind
	re    *regexp.Regexp
	group int
}

var codePatterns = []codePattern{
	// import / dependency declarations
	{extractImports, regexp.MustCompile(`(?m)^\s*import\s+[^\n;]+`), 0},
	{extractImports, regexp.MustCompile(`(?m)^\s*from\s+\S+\s+import\s+[^\n]+`), 0},
	{extractImports, regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+[^\n=]+=\s*require\([^)\n]*\)`), 0},
	{extractImports, regexp.MustCompile(`(?m)^\s*use\s+[A-Za-z_][\w:]*[^\n;]*;`), 0},
	{extractImports, regexp.MustCompile(`(?m)^\s*#include\s*[<"][^>"\n]+[>"]`), 0},

	// export / public-symbol declarations
	{extractExports, regexp.MustCompile(`(?m)^\s*export\s+(?:default\s+)?(?:abstract\s+)?(?:async\s+)?(?:const|let|var|function|class|interface|type|enum)\s+([A-Za-z_$][\w$]*)`), 1},
	{extractExports, regexp.MustCompile(`(?m)^\s*module\.exports(?:\.([A-Za-z_$][\w$]*))?`), 1},
	{extractExports, regexp.MustCompile(`(?m)^\s*pub\s+(?:async\s+)?(?:fn|struct|enum|trait|mod|const|static)\s+([A-Za-z_]\w*)`), 1},

	// function / method signatures
	{extractFunctions, regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:async\s+)?function\s*\*?\s*([A-Za-z_$][\w$]*)`), 1},
	{extractFunctions, regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\([^)\n]*\)\s*=>`), 1},
	{extractFunctions, regexp.MustCompile(`(?m)^\s*(?:async\s+)?def\s+([A-Za-z_]\w*)`), 1},
	{extractFunctions, regexp.MustCompile(`(?m)^\s*func\s+(?:\([^)]*\)\s*)?([A-Za-z_]\w*)\s*\(`), 1},
	{extractFunctions, regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:async\s+)?fn\s+([A-Za-z_]\w*)`), 1},

	// type / class / struct declarations
	{extractClasses, regexp.MustCompile(`(?m)^\s*(?:export\s+)?(?:default\s+)?(?:abstract\s+)?class\s+([A-Za-z_$][\w$]*)`), 1},
	{extractClasses, regexp.MustCompile(`(?m)^\s*(?:export\s+)?interface\s+([A-Za-z_$][\w$]*)`), 1},
	{extractClasses, regexp.MustCompile(`(?m)^\s*(?:pub\s+)?(?:struct|enum|trait)\s+([A-Za-z_]\w*)`), 1},
	{extractClasses, regexp.MustCompile(`(?m)^\s*type\s+([A-Za-z_]\w*)\s+(?:struct|interface)\b`), 1},

	// inline work markers
	{extractTODOs, regexp.MustCompile(`(?m)\b(?:TODO|FIXME|HACK|BUG)\b[:\s][^\n]*`), 0},
}

// ExtractImports returns the distinct import declarations found in src.
func ExtractImports(src string) []string { return extractMatches(extractImports, src) }

// ExtractExports returns the distinct exported symbol names found in src.
func ExtractExports(src string) []string { return extractMatches(extractExports, src) }

// ExtractFunctions returns the distinct function names declared in src.
func ExtractFunctions(src string) []string { return extractMatches(extractFunctions, src) }

// ExtractClasses returns the distinct type, class, and struct names in src.
func ExtractClasses(src string) []string { return extractMatches(extractClasses, src) }

// ExtractTODOs returns the distinct TODO/FIXME/HACK/BUG marker lines in src.
func ExtractTODOs(src string) []string { return extractMatches(extractTODOs, src) }

// extractMatches runs every pattern registered for kind over src in table
// order, deduplicating while preserving first-seen order. Best effort:
// malformed or binary input just yields fewer matches, never an error.
func extractMatches(kind extractionKind, src string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, p := range codePatterns {
		if p.kind != kind {
			continue
		}
		for _, m := range p.re.FindAllStringSubmatch(src, -1) {
			v := m[0]
			if p.group > 0 && p.group < len(m) {
				v = m[p.group]
			}
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
