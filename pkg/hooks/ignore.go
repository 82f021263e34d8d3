package hooks

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/hindsight-mem/hindsight/pkg/logger"
)

// ignoreMatcher keeps observations about sensitive paths out of the store.
type ignoreMatcher struct {
	globs []glob.Glob
}

// newIgnoreMatcher compiles the configured patterns. Invalid patterns are
// logged and dropped rather than failing the hook.
func newIgnoreMatcher(patterns []string, log *logger.Logger) *ignoreMatcher {
	m := &ignoreMatcher{}
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			log.Warnf("invalid ignore pattern %q: %v", pattern, err)
			continue
		}
		m.globs = append(m.globs, g)
	}
	return m
}

// Matches reports whether path falls under any ignore pattern. Relative
// paths are also tested with a leading slash so rooted ** patterns apply
// to them.
func (m *ignoreMatcher) Matches(path string) bool {
	if path == "" {
		return false
	}
	p := filepath.ToSlash(filepath.Clean(path))
	rooted := p
	if !strings.HasPrefix(p, "/") {
		rooted = "/" + p
	}
	for _, g := range m.globs {
		if g.Match(p) || g.Match(rooted) {
			return true
		}
	}
	return false
}
