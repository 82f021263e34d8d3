// Package hooks turns host lifecycle events into memory operations: tool
// events become stored observations, session starts get assembled context,
// session ends get summarized.
package hooks

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/hindsight-mem/hindsight/pkg/config"
	"github.com/hindsight-mem/hindsight/pkg/logger"
	"github.com/hindsight-mem/hindsight/pkg/observe"
	"github.com/hindsight-mem/hindsight/pkg/store"
)

// ToolEvent is one finished tool invocation reported by the host.
type ToolEvent struct {
	SessionID string
	ToolName  string
	Input     observe.ToolInput
	Response  string
}

// StartEvent marks the beginning of a session. Query optionally carries the
// user's opening prompt for relevance search.
type StartEvent struct {
	SessionID string
	Query     string
}

// EndEvent marks the end of a session.
type EndEvent struct {
	SessionID      string
	TranscriptPath string
}

// maxSessionObservations bounds the session-end collection scan.
const maxSessionObservations = 500

// minObservationsForSummary gates summarization; shorter sessions leave no
// trace beyond their individual observations.
const minObservationsForSummary = 3

// Service orchestrates the hook handlers. One short-lived process handles
// one event, so Service carries no background state.
type Service struct {
	cfg    *config.Config
	store  store.Store
	log    *logger.Logger
	ignore *ignoreMatcher
}

func NewService(cfg *config.Config, st store.Store, log *logger.Logger) *Service {
	return &Service{
		cfg:    cfg,
		store:  st,
		log:    log,
		ignore: newIgnoreMatcher(cfg.IgnoreGlobs, log),
	}
}

// HandleToolEvent records one tool invocation as an observation. A nil
// observation with a nil error means the event was deliberately skipped.
func (s *Service) HandleToolEvent(ctx context.Context, ev ToolEvent) (*observe.Observation, error) {
	if ev.ToolName == "" {
		s.log.Debugf("tool event without tool name, skipping")
		return nil, nil
	}

	sessionID := ev.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
		s.log.Debugf("tool event without session id, generated %s", sessionID)
	}

	if path := targetPath(ev.Input); path != "" && s.ignore.Matches(path) {
		s.log.Debugf("skipping observation for ignored path %s", path)
		return nil, nil
	}

	summary := observe.Summarize(ev.ToolName, ev.Input, ev.Response)
	typ := observe.Classify(ev.ToolName, ev.Response)

	content := ev.Response
	meta := observe.Meta{
		SessionID:  sessionID,
		Command:    ev.Input.Command,
		Pattern:    ev.Input.Pattern,
		SearchPath: ev.Input.Path,
	}
	if ev.Input.FilePath != "" {
		meta.Files = []string{ev.Input.FilePath}
	}
	if s.cfg.AutoCompress {
		res := observe.Compress(ev.ToolName, ev.Input, ev.Response)
		content = res.Compressed
		meta.Compressed = res.WasCompressed
		meta.OriginalSize = res.OriginalSize
		meta.CompressedSize = len(res.Compressed)
	}

	obs := observe.NewObservation(typ, ev.ToolName, summary, content, meta)

	if _, err := s.store.Put(ctx, toRecord(obs, sessionID)); err != nil {
		return nil, fmt.Errorf("persist observation: %w", err)
	}
	s.log.Debugf("recorded %s observation %s: %s", obs.Type, obs.ID, summary)
	return &obs, nil
}

// HandleSessionStart assembles memory context for a fresh session and
// renders it as an injectable text block.
func (s *Service) HandleSessionStart(ctx context.Context, ev StartEvent) (*observe.InjectedContext, string, error) {
	recs, err := s.store.Timeline(ctx, store.TimelineOptions{
		Limit:   s.cfg.MaxContextObservations,
		Reverse: true,
		Kind:    store.KindObservation,
	})
	if err != nil {
		return nil, "", fmt.Errorf("scan recent observations: %w", err)
	}
	recent := make([]observe.Observation, 0, len(recs))
	for _, rec := range recs {
		recent = append(recent, fromRecord(rec))
	}

	var relevant []observe.Observation
	if strings.TrimSpace(ev.Query) != "" {
		res, err := s.store.Find(ctx, ev.Query, store.FindOptions{
			K:    10,
			Mode: store.ModeAny,
			Kind: store.KindObservation,
		})
		if err != nil {
			return nil, "", fmt.Errorf("search relevant memories: %w", err)
		}
		for _, fr := range res.Frames {
			relevant = append(relevant, fromRecord(fr.Record))
		}
	}

	ic := observe.Assemble(recent, relevant, s.cfg.MaxContextTokens)
	rendered := RenderContext(&ic)
	s.log.Debugf("session start %s: %d recent, %d relevant, %d tokens",
		ev.SessionID, len(ic.RecentObservations), len(ic.RelevantMemories), ic.TokenCount)
	return &ic, rendered, nil
}

// HandleSessionEnd summarizes a finished session when it produced enough
// observations, then runs any due maintenance. A nil summary with a nil
// error means the session was too small to summarize.
func (s *Service) HandleSessionEnd(ctx context.Context, ev EndEvent) (*observe.SessionSummary, error) {
	defer s.runMaintenance(ctx)

	if ev.SessionID == "" {
		s.log.Debugf("session end without session id, nothing to summarize")
		return nil, nil
	}

	recs, err := s.store.Timeline(ctx, store.TimelineOptions{
		Limit:     maxSessionObservations,
		SessionID: ev.SessionID,
		Kind:      store.KindObservation,
	})
	if err != nil {
		return nil, fmt.Errorf("collect session observations: %w", err)
	}
	if len(recs) < minObservationsForSummary {
		s.log.Debugf("session %s has %d observations, below the summary threshold", ev.SessionID, len(recs))
		return nil, nil
	}

	observations := make([]observe.Observation, 0, len(recs))
	for _, rec := range recs {
		observations = append(observations, fromRecord(rec))
	}

	transcript := ""
	if ev.TranscriptPath != "" {
		if data, err := os.ReadFile(ev.TranscriptPath); err == nil {
			transcript = string(data)
		} else {
			s.log.Debugf("transcript unavailable: %v", err)
		}
	}

	draft := observe.Synthesize(observations, transcript)
	summary := observe.SessionSummary{
		ID:               ev.SessionID,
		StartTime:        observations[0].Timestamp,
		EndTime:          observations[len(observations)-1].Timestamp,
		ObservationCount: len(observations),
		KeyDecisions:     draft.KeyDecisions,
		FilesModified:    draft.FilesModified,
		Summary:          draft.Summary,
	}

	if _, err := s.store.Put(ctx, summaryRecord(summary)); err != nil {
		return nil, fmt.Errorf("persist session summary: %w", err)
	}
	s.log.Infof("summarized session %s: %d observations, %d decisions, %d files",
		ev.SessionID, summary.ObservationCount, len(summary.KeyDecisions), len(summary.FilesModified))
	return &summary, nil
}

// targetPath picks the path-like argument the ignore rules apply to.
func targetPath(input observe.ToolInput) string {
	if input.FilePath != "" {
		return input.FilePath
	}
	return input.Path
}

func toRecord(obs observe.Observation, sessionID string) store.Record {
	meta := map[string]string{"tool": obs.Tool}
	if len(obs.Meta.Files) > 0 {
		meta["files"] = strings.Join(obs.Meta.Files, "\n")
	}
	if obs.Meta.Command != "" {
		meta["command"] = obs.Meta.Command
	}
	if obs.Meta.Pattern != "" {
		meta["pattern"] = obs.Meta.Pattern
	}
	if obs.Meta.SearchPath != "" {
		meta["search_path"] = obs.Meta.SearchPath
	}
	if obs.Meta.Compressed {
		meta["compressed"] = "true"
		meta["original_size"] = strconv.Itoa(obs.Meta.OriginalSize)
		meta["compressed_size"] = strconv.Itoa(obs.Meta.CompressedSize)
	}
	for k, v := range obs.Meta.Extra {
		meta[k] = v
	}
	return store.Record{
		ID:          obs.ID,
		Kind:        store.KindObservation,
		Type:        string(obs.Type),
		Title:       obs.Summary,
		Content:     obs.Content,
		SessionID:   sessionID,
		Meta:        meta,
		CreatedAtMS: obs.Timestamp,
	}
}

func fromRecord(rec store.Record) observe.Observation {
	meta := observe.Meta{
		SessionID:  rec.SessionID,
		Command:    rec.Meta["command"],
		Pattern:    rec.Meta["pattern"],
		SearchPath: rec.Meta["search_path"],
	}
	if files := rec.Meta["files"]; files != "" {
		meta.Files = strings.Split(files, "\n")
	}
	return observe.Observation{
		ID:        rec.ID,
		Timestamp: rec.CreatedAtMS,
		Type:      observe.ObservationType(rec.Type),
		Tool:      rec.Meta["tool"],
		Summary:   rec.Title,
		Content:   rec.Content,
		Meta:      meta,
	}
}

func summaryRecord(sum observe.SessionSummary) store.Record {
	var b strings.Builder
	b.WriteString(sum.Summary)
	if len(sum.KeyDecisions) > 0 {
		b.WriteString("\n\nKey decisions:\n")
		for _, d := range sum.KeyDecisions {
			fmt.Fprintf(&b, "- %s\n", d)
		}
	}
	if len(sum.FilesModified) > 0 {
		b.WriteString("\nFiles modified:\n")
		for _, f := range sum.FilesModified {
			fmt.Fprintf(&b, "- %s\n", f)
		}
	}
	return store.Record{
		ID:        sum.ID,
		Kind:      store.KindSessionSummary,
		Type:      "summary",
		Title:     sum.Summary,
		Content:   strings.TrimSpace(b.String()),
		SessionID: sum.ID,
		Meta: map[string]string{
			"observation_count": strconv.Itoa(sum.ObservationCount),
			"start_time_ms":     strconv.FormatInt(sum.StartTime, 10),
			"end_time_ms":       strconv.FormatInt(sum.EndTime, 10),
		},
	}
}
