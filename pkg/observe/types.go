package observe

import (
	"strings"
	"time"
)

// ObservationType is the semantic category assigned to a recorded observation.
type ObservationType string

const (
	TypeDiscovery ObservationType = "discovery"
	TypeDecision  ObservationType = "decision"
	TypeProblem   ObservationType = "problem"
	TypeSolution  ObservationType = "solution"
	TypePattern   ObservationType = "pattern"
	TypeWarning   ObservationType = "warning"
	TypeSuccess   ObservationType = "success"
	TypeRefactor  ObservationType = "refactor"
	TypeBugfix    ObservationType = "bugfix"
	TypeFeature   ObservationType = "feature"
)

// ObservationTypes lists every valid category.
var ObservationTypes = []ObservationType{
	TypeDiscovery,
	TypeDecision,
	TypeProblem,
	TypeSolution,
	TypePattern,
	TypeWarning,
	TypeSuccess,
	TypeRefactor,
	TypeBugfix,
	TypeFeature,
}

// ToolKind is the closed set of tool families the pipeline dispatches on.
type ToolKind int

const (
	KindUnknown ToolKind = iota
	KindRead
	KindEdit
	KindWrite
	KindCommand
	KindSearchContent
	KindSearchGlob
)

// String returns the kind's short name for logs and diagnostics.
func (k ToolKind) String() string {
	switch k {
	case KindRead:
		return "read"
	case KindEdit:
		return "edit"
	case KindWrite:
		return "write"
	case KindCommand:
		return "command"
	case KindSearchContent:
		return "search"
	case KindSearchGlob:
		return "glob"
	}
	return "unknown"
}

// KindOf maps a host tool name onto its family. Unrecognized names fold into
// KindUnknown rather than erroring.
func KindOf(toolName string) ToolKind {
	switch strings.ToLower(strings.TrimSpace(toolName)) {
	case "read", "view", "cat", "notebookread":
		return KindRead
	case "edit", "multiedit", "notebookedit", "patch":
		return KindEdit
	case "write", "create":
		return KindWrite
	case "bash", "shell", "exec", "command", "run":
		return KindCommand
	case "grep", "search", "ripgrep":
		return KindSearchContent
	case "glob", "find":
		return KindSearchGlob
	}
	return KindUnknown
}

// ToolInput carries the decoded arguments of one tool invocation. Every field
// is optional; consumers fall back to literal placeholders when one is empty.
type ToolInput struct {
	FilePath string
	Command  string
	Pattern  string
	Path     string
}

// Meta is the structured metadata attached to an observation. The fields the
// pipeline reads are typed; anything else rides in Extra.
type Meta struct {
	SessionID      string
	Files          []string
	Command        string
	Pattern        string
	SearchPath     string
	Compressed     bool
	OriginalSize   int
	CompressedSize int
	Extra          map[string]string
}

// Observation is one immutable memory record describing a meaningful event
// during a session. Records are appended to the store and never mutated.
type Observation struct {
	ID        string
	Timestamp int64
	Type      ObservationType
	Tool      string
	Summary   string
	Content   string
	Meta      Meta
}

// MaxContentLength bounds an observation's stored content.
const MaxContentLength = 2500

// NewObservation builds a record for one tool event. Content beyond
// MaxContentLength is hard-truncated with a trailing marker.
func NewObservation(typ ObservationType, tool, summary, content string, meta Meta) Observation {
	return Observation{
		ID:        NewID(),
		Timestamp: time.Now().UnixMilli(),
		Type:      typ,
		Tool:      tool,
		Summary:   summary,
		Content:   truncate(content, MaxContentLength),
		Meta:      meta,
	}
}

// SessionSummary condenses one finished session. Created at most once per
// session, with the session's own identifier as its ID.
type SessionSummary struct {
	ID               string
	StartTime        int64
	EndTime          int64
	ObservationCount int
	KeyDecisions     []string
	FilesModified    []string
	Summary          string
}

// InjectedContext is the transient context block assembled at session start.
// It is built fresh every time and never persisted.
type InjectedContext struct {
	RecentObservations []Observation
	RelevantMemories   []Observation
	// SessionSummaries stays empty for now; prior-session summaries are not
	// resurfaced yet.
	SessionSummaries []SessionSummary
	// TokenCount is the estimated cost of the recent observations that fit
	// the budget, not of everything fetched.
	TokenCount int
}

// CompressionResult reports one compression pass over a tool's output.
type CompressionResult struct {
	Compressed    string
	WasCompressed bool
	OriginalSize  int
}
