// Package store persists memory records in a single-file archive and serves
// the lexical search, timeline, and stats operations the hook pipeline
// consumes. Callers treat it as a collaborator: failures propagate unchanged.
package store

import "context"

// Record kinds.
const (
	KindObservation    = "observation"
	KindSessionSummary = "session_summary"
)

// Find modes. ModeAll requires every term, ModeAny matches on any term,
// ModePhrase matches the query as one phrase.
const (
	ModeAll    = "all"
	ModeAny    = "any"
	ModePhrase = "phrase"
)

// Record is one immutable archive entry.
type Record struct {
	ID          string
	Kind        string
	Type        string
	Title       string
	Content     string
	SessionID   string
	Meta        map[string]string
	CreatedAtMS int64
}

// Frame is one ranked search hit.
type Frame struct {
	Record
	Score   float64
	Snippet string
}

// FindOptions controls ranked search. Kind filters hits when non-empty.
type FindOptions struct {
	K    int
	Mode string
	Kind string
}

// FindResult carries ranked hits, best first.
type FindResult struct {
	Frames []Frame
}

// AskOptions controls answer synthesis.
type AskOptions struct {
	K    int
	Mode string
}

// Answer is a best-effort extractive response built from stored records.
type Answer struct {
	Text    string
	Sources []string
}

// TimelineOptions controls chronological scans. Reverse returns newest
// first. SessionID and Kind filter when non-empty.
type TimelineOptions struct {
	Limit     int
	Reverse   bool
	SessionID string
	Kind      string
}

// Stats reports aggregate archive counters.
type Stats struct {
	FrameCount int64
	SizeBytes  int64
}

// Store is the persistence contract the hook pipeline depends on.
type Store interface {
	// Put appends a record. Identical content resolves to the already
	// stored record's id instead of a duplicate row.
	Put(ctx context.Context, rec Record) (string, error)
	// Find runs ranked lexical search over titles and content.
	Find(ctx context.Context, query string, opts FindOptions) (FindResult, error)
	// Ask synthesizes a short extractive answer from matching records.
	Ask(ctx context.Context, question string, opts AskOptions) (Answer, error)
	// Timeline scans records chronologically.
	Timeline(ctx context.Context, opts TimelineOptions) ([]Record, error)
	// Stats reports record count and archive size.
	Stats(ctx context.Context) (Stats, error)
	// Sweep deletes observations older than keepDays, returning the number
	// removed. Session summaries are retained.
	Sweep(ctx context.Context, keepDays int) (int, error)
	// GetMeta and SetMeta read and write operator bookkeeping values.
	GetMeta(ctx context.Context, key string) (string, error)
	SetMeta(ctx context.Context, key, value string) error
	Close() error
}
