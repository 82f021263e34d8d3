package observe

import "fmt"

// maxRelevantMemories caps query-based search hits in a context block.
const maxRelevantMemories = 10

// EstimateTokens prices an observation's context line at four characters per
// token, rounding up.
func EstimateTokens(obs Observation) int {
	line := fmt.Sprintf("[%s] %s", obs.Type, obs.Summary)
	return (len(line) + 3) / 4
}

// Assemble builds the session-start context block. recent must already be a
// reverse-chronological window; relevant holds search hits for the session's
// opening query, if any.
//
// The token budget is greedy: items are counted in order until the next one
// would overflow maxTokens, and no item is partially counted. The budget
// gates only the reported TokenCount; the fetched window is returned whole,
// and the renderer downstream decides how much to actually print.
func Assemble(recent, relevant []Observation, maxTokens int) InjectedContext {
	total := 0
	for _, obs := range recent {
		cost := EstimateTokens(obs)
		if total+cost > maxTokens {
			break
		}
		total += cost
	}

	if len(relevant) > maxRelevantMemories {
		relevant = relevant[:maxRelevantMemories]
	}

	return InjectedContext{
		RecentObservations: recent,
		RelevantMemories:   relevant,
		SessionSummaries:   []SessionSummary{},
		TokenCount:         total,
	}
}
