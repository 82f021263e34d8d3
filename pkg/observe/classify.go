package observe

import "strings"

var (
	problemMarkers = []string{"error", "failed", "exception"}
	successMarkers = []string{"success", "passed", "completed"}
	warningMarkers = []string{"warning", "deprecated"}
)

// Classify assigns a semantic category to one tool invocation. Marker checks
// run case-insensitively over the full output and take priority over the
// tool-based dispatch; first match wins. Total function, every input maps to
// a category.
func Classify(toolName, output string) ObservationType {
	lower := strings.ToLower(output)
	switch {
	case containsAny(lower, problemMarkers):
		return TypeProblem
	case containsAny(lower, successMarkers):
		return TypeSuccess
	case containsAny(lower, warningMarkers):
		return TypeWarning
	}

	switch KindOf(toolName) {
	case KindRead, KindSearchContent, KindSearchGlob:
		return TypeDiscovery
	case KindEdit:
		if strings.Contains(lower, "fix") || strings.Contains(lower, "bug") {
			return TypeBugfix
		}
		return TypeRefactor
	case KindWrite:
		return TypeFeature
	case KindCommand, KindUnknown:
		return TypeDiscovery
	}
	return TypeDiscovery
}

func containsAny(lower string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
