package observe

import (
	"strings"
	"testing"
)

func TestClassify_MarkerPriority(t *testing.T) {
	got := Classify("Bash", "Error: tests failed\nBuild completed successfully")
	if got != TypeProblem {
		t.Fatalf("expected problem to win over success, got %q", got)
	}
	got = Classify("Bash", "All checks passed\nwarning: deprecated API")
	if got != TypeSuccess {
		t.Fatalf("expected success to win over warning, got %q", got)
	}
}

func TestClassify_ToolDispatch(t *testing.T) {
	cases := []struct {
		tool   string
		output string
		want   ObservationType
	}{
		{"Read", "package main\n\nfunc main() {}", TypeDiscovery},
		{"Grep", "main.go:10:func main", TypeDiscovery},
		{"Glob", "cmd/main.go\npkg/a.go", TypeDiscovery},
		{"Edit", "applied fix for nil deref", TypeBugfix},
		{"Edit", "renamed helper across call sites", TypeRefactor},
		{"MultiEdit", "bug in parser addressed", TypeBugfix},
		{"Write", "created new handler", TypeFeature},
		{"Bash", "done in 1.2s", TypeDiscovery},
		{"SomethingNew", "arbitrary text", TypeDiscovery},
	}
	for _, tc := range cases {
		if got := Classify(tc.tool, tc.output); got != tc.want {
			t.Fatalf("Classify(%q, %q) = %q, want %q", tc.tool, tc.output, got, tc.want)
		}
	}
}

func TestClassify_Totality(t *testing.T) {
	valid := map[ObservationType]bool{}
	for _, typ := range ObservationTypes {
		valid[typ] = true
	}
	tools := []string{"", "Read", "Edit", "Write", "Bash", "Glob", "Grep", "???", "Task"}
	outputs := []string{
		"",
		"\x00\x01\xfe binary-ish payload \xff",
		strings.Repeat("aaaa bbbb cccc ", 10000),
		"Error: Success: warning:",
		"\n\n\n",
	}
	for _, tool := range tools {
		for _, out := range outputs {
			got := Classify(tool, out)
			if !valid[got] {
				t.Fatalf("Classify(%q, ...) produced invalid category %q", tool, got)
			}
		}
	}
}

func TestKindOf_Families(t *testing.T) {
	cases := []struct {
		tool string
		want ToolKind
	}{
		{"Read", KindRead},
		{"read", KindRead},
		{"MultiEdit", KindEdit},
		{"NotebookEdit", KindEdit},
		{"Write", KindWrite},
		{"Bash", KindCommand},
		{"Grep", KindSearchContent},
		{"Glob", KindSearchGlob},
		{"WebFetch", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := KindOf(tc.tool); got != tc.want {
			t.Fatalf("KindOf(%q) = %v, want %v", tc.tool, got, tc.want)
		}
	}
}
