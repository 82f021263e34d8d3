package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/hindsight-mem/hindsight/pkg/config"
	"github.com/hindsight-mem/hindsight/pkg/hooks"
	"github.com/hindsight-mem/hindsight/pkg/logger"
	"github.com/hindsight-mem/hindsight/pkg/observe"
	"github.com/hindsight-mem/hindsight/pkg/store"
)

// hookEnvelope mirrors the host's hook event JSON. Unknown fields are
// ignored and absent fields default to empty.
type hookEnvelope struct {
	SessionID      string          `json:"session_id"`
	ToolName       string          `json:"tool_name"`
	ToolInput      json.RawMessage `json:"tool_input"`
	ToolResponse   json.RawMessage `json:"tool_response"`
	TranscriptPath string          `json:"transcript_path"`
	Prompt         string          `json:"prompt"`
}

// hookOutcome is what the host reads back. Continue is always true:
// memory trouble must never block the assistant.
type hookOutcome struct {
	Continue          bool   `json:"continue"`
	AdditionalContext string `json:"additionalContext,omitempty"`
}

func (env hookEnvelope) toolInput() observe.ToolInput {
	var fields struct {
		FilePath string `json:"file_path"`
		Command  string `json:"command"`
		Pattern  string `json:"pattern"`
		Path     string `json:"path"`
	}
	if len(env.ToolInput) > 0 {
		_ = json.Unmarshal(env.ToolInput, &fields)
	}
	return observe.ToolInput{
		FilePath: fields.FilePath,
		Command:  fields.Command,
		Pattern:  fields.Pattern,
		Path:     fields.Path,
	}
}

// responseText flattens the tool response to plain text. Hosts send either
// a JSON string or a structured payload; structured payloads are kept as
// their raw JSON text.
func (env hookEnvelope) responseText() string {
	if len(env.ToolResponse) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(env.ToolResponse, &s); err == nil {
		return s
	}
	return string(env.ToolResponse)
}

type hookFunc func(ctx context.Context, svc *hooks.Service, env hookEnvelope) (hookOutcome, error)

// runHook decodes one envelope from in, runs fn against a freshly opened
// service, and writes the outcome to out. Whatever goes wrong, the host
// gets a continue outcome; diagnostics go to the log only.
func runHook(in io.Reader, out io.Writer, fn hookFunc) error {
	var log *logger.Logger
	defer func() {
		if r := recover(); r != nil {
			if log != nil {
				log.Errorf("hook panicked: %v", r)
			}
			_ = json.NewEncoder(out).Encode(hookOutcome{Continue: true})
		}
	}()

	cfg, err := config.LoadConfig("")
	if err != nil {
		cfg = config.DefaultConfig()
	}
	log, _ = logger.New(cfg.LogDir(), "hooks", cfg.Debug)
	defer log.Close()
	if err != nil {
		log.Warnf("settings unavailable, using defaults: %v", err)
	}

	var env hookEnvelope
	if err := json.NewDecoder(in).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		log.Warnf("malformed hook envelope: %v", err)
		return json.NewEncoder(out).Encode(hookOutcome{Continue: true})
	}

	st, err := store.NewSQLiteStore(cfg.ArchivePath())
	if err != nil {
		log.Errorf("open archive: %v", err)
		return json.NewEncoder(out).Encode(hookOutcome{Continue: true})
	}
	defer st.Close()

	svc := hooks.NewService(cfg, st, log)
	outcome, err := fn(context.Background(), svc, env)
	if err != nil {
		log.Errorf("hook failed: %v", err)
		outcome = hookOutcome{}
	}
	outcome.Continue = true
	return json.NewEncoder(out).Encode(outcome)
}

func handleObserve(ctx context.Context, svc *hooks.Service, env hookEnvelope) (hookOutcome, error) {
	_, err := svc.HandleToolEvent(ctx, hooks.ToolEvent{
		SessionID: env.SessionID,
		ToolName:  env.ToolName,
		Input:     env.toolInput(),
		Response:  env.responseText(),
	})
	return hookOutcome{}, err
}

func handleSessionStart(ctx context.Context, svc *hooks.Service, env hookEnvelope) (hookOutcome, error) {
	_, rendered, err := svc.HandleSessionStart(ctx, hooks.StartEvent{
		SessionID: env.SessionID,
		Query:     env.Prompt,
	})
	if err != nil {
		return hookOutcome{}, err
	}
	return hookOutcome{AdditionalContext: rendered}, nil
}

func handleSessionEnd(ctx context.Context, svc *hooks.Service, env hookEnvelope) (hookOutcome, error) {
	_, err := svc.HandleSessionEnd(ctx, hooks.EndEvent{
		SessionID:      env.SessionID,
		TranscriptPath: env.TranscriptPath,
	})
	return hookOutcome{}, err
}
