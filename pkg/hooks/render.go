package hooks

import (
	"fmt"
	"strings"

	"github.com/hindsight-mem/hindsight/pkg/observe"
)

// RenderContext formats an assembled context as the text block injected
// into a fresh session. Recent observations print only up to the counted
// token budget; relevant hits print in full. Returns "" when there is
// nothing worth injecting.
func RenderContext(ic *observe.InjectedContext) string {
	if ic == nil {
		return ""
	}
	showRecent := ic.TokenCount > 0 && len(ic.RecentObservations) > 0
	if !showRecent && len(ic.RelevantMemories) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("## Memory from previous sessions\n")

	if showRecent {
		b.WriteString("\n### Recent activity\n")
		used := 0
		for _, obs := range ic.RecentObservations {
			cost := observe.EstimateTokens(obs)
			if used+cost > ic.TokenCount {
				break
			}
			fmt.Fprintf(&b, "- [%s] %s\n", obs.Type, obs.Summary)
			used += cost
		}
	}

	if len(ic.RelevantMemories) > 0 {
		b.WriteString("\n### Recalled memory\n")
		for _, obs := range ic.RelevantMemories {
			fmt.Fprintf(&b, "- [%s] %s\n", obs.Type, obs.Summary)
		}
	}

	return strings.TrimSpace(b.String())
}
