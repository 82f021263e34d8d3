package observe

import (
	"fmt"
	"regexp"
	"strings"
)

// SummaryDraft is the synthesizer's output. The caller that owns session
// timing promotes it to a SessionSummary.
type SummaryDraft struct {
	KeyDecisions  []string
	FilesModified []string
	Summary       string
}

const (
	maxKeyDecisions  = 10
	maxFilesModified = 20
)

var (
	// Transcript mining patterns: tool argument file_path/path keys plus
	// bare tool-call argument paths.
	transcriptPathRegexes = []*regexp.Regexp{
		regexp.MustCompile(`"file_path"\s*:\s*"([^"\n]+)"`),
		regexp.MustCompile(`"path"\s*:\s*"([^"\n]+)"`),
		regexp.MustCompile(`(?:Read|Edit|Write|MultiEdit)\(([^()\s,"']+\.[A-Za-z0-9]{1,8})\)`),
	}
	vendorDirs = []string{"node_modules/", "vendor/", ".git/"}
)

// Synthesize distills a finished session's observations, plus an optional
// raw transcript, into a draft summary. Total function: any input, including
// an empty slice, yields a draft.
func Synthesize(observations []Observation, transcript string) SummaryDraft {
	decisions := []string{}
	files := []string{}
	seen := map[string]struct{}{}
	addFile := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" || excludedPath(p) {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		files = append(files, p)
	}

	for _, obs := range observations {
		lower := strings.ToLower(obs.Summary)
		if obs.Type == TypeDecision || strings.Contains(lower, "chose") || strings.Contains(lower, "decided") {
			decisions = append(decisions, obs.Summary)
		}
		for _, f := range obs.Meta.Files {
			addFile(f)
		}
	}

	if transcript != "" {
		for _, re := range transcriptPathRegexes {
			for _, m := range re.FindAllStringSubmatch(transcript, -1) {
				if len(m) >= 2 {
					addFile(m[1])
				}
			}
		}
	}

	if len(decisions) > maxKeyDecisions {
		decisions = decisions[:maxKeyDecisions]
	}
	if len(files) > maxFilesModified {
		files = files[:maxFilesModified]
	}
	return SummaryDraft{
		KeyDecisions:  decisions,
		FilesModified: files,
		Summary:       narrative(observations),
	}
}

// excludedPath filters dependency-vendor paths and dot-prefixed paths out of
// the modified-files set.
func excludedPath(p string) bool {
	if strings.HasPrefix(p, ".") {
		return true
	}
	for _, dir := range vendorDirs {
		if strings.Contains(p, dir) {
			return true
		}
	}
	return false
}

// narrative builds one clause per non-zero observation type, in a fixed
// priority order, falling back to a bare count.
func narrative(observations []Observation) string {
	counts := map[ObservationType]int{}
	for _, obs := range observations {
		counts[obs.Type]++
	}

	parts := []string{}
	if n := counts[TypeFeature]; n > 0 {
		parts = append(parts, fmt.Sprintf("Added %d feature(s).", n))
	}
	if n := counts[TypeBugfix]; n > 0 {
		parts = append(parts, fmt.Sprintf("Fixed %d bug(s).", n))
	}
	if n := counts[TypeRefactor]; n > 0 {
		parts = append(parts, fmt.Sprintf("Refactored %d component(s).", n))
	}
	if n := counts[TypeDiscovery]; n > 0 {
		parts = append(parts, fmt.Sprintf("Made %d discovery(s).", n))
	}
	if n := counts[TypeProblem]; n > 0 {
		parts = append(parts, fmt.Sprintf("Hit %d problem(s).", n))
	}
	if n := counts[TypeSolution]; n > 0 {
		parts = append(parts, fmt.Sprintf("Solved %d issue(s).", n))
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Session with %d observations.", len(observations))
	}
	return strings.Join(parts, " ")
}
