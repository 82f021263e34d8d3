package observe

import (
	"fmt"
	"reflect"
	"testing"
)

func TestSynthesize_SessionDraft(t *testing.T) {
	observations := []Observation{
		{Type: TypeDecision, Summary: "Chose Postgres over MySQL"},
		{Type: TypeDiscovery, Summary: "Read src/db.ts (120 lines)", Meta: Meta{Files: []string{"a.ts"}}},
		{Type: TypeDiscovery, Summary: "Read src/api.ts (80 lines)", Meta: Meta{Files: []string{"b.ts"}}},
		{Type: TypeDiscovery, Summary: "Ran: npm test"},
	}

	draft := Synthesize(observations, "")
	if !reflect.DeepEqual(draft.KeyDecisions, []string{"Chose Postgres over MySQL"}) {
		t.Fatalf("key decisions = %#v", draft.KeyDecisions)
	}
	if !reflect.DeepEqual(draft.FilesModified, []string{"a.ts", "b.ts"}) {
		t.Fatalf("files modified = %#v", draft.FilesModified)
	}
}

func TestSynthesize_DecisionCueInSummary(t *testing.T) {
	observations := []Observation{
		{Type: TypeDiscovery, Summary: "Decided to keep the v1 wire format"},
	}
	draft := Synthesize(observations, "")
	if len(draft.KeyDecisions) != 1 {
		t.Fatalf("summary cue missed: %#v", draft.KeyDecisions)
	}
}

func TestSynthesize_TranscriptMining(t *testing.T) {
	transcript := `
	{"tool":"Edit","tool_input":{"file_path":"src/server.go"}}
	{"tool":"Read","tool_input":{"file_path":"node_modules/lodash/index.js"}}
	{"tool":"Write","tool_input":{"file_path":".env.local"}}
	Edit(web/router.ts)
	{"tool":"Read","tool_input":{"path":"vendor/pkg/errors/errors.go"}}
	`
	draft := Synthesize(nil, transcript)
	want := []string{"src/server.go", "web/router.ts"}
	if !reflect.DeepEqual(draft.FilesModified, want) {
		t.Fatalf("files modified = %#v, want %#v", draft.FilesModified, want)
	}
}

func TestSynthesize_NarrativeOrder(t *testing.T) {
	observations := []Observation{
		{Type: TypeBugfix, Summary: "x"},
		{Type: TypeFeature, Summary: "y"},
		{Type: TypeFeature, Summary: "z"},
		{Type: TypeRefactor, Summary: "w"},
	}
	draft := Synthesize(observations, "")
	want := "Added 2 feature(s). Fixed 1 bug(s). Refactored 1 component(s)."
	if draft.Summary != want {
		t.Fatalf("narrative = %q, want %q", draft.Summary, want)
	}
}

func TestSynthesize_NarrativeFallback(t *testing.T) {
	observations := []Observation{
		{Type: TypeWarning, Summary: "deprecation notice"},
		{Type: TypePattern, Summary: "repeated retry loop"},
	}
	draft := Synthesize(observations, "")
	if draft.Summary != "Session with 2 observations." {
		t.Fatalf("fallback narrative = %q", draft.Summary)
	}
}

func TestSynthesize_CapsListSizes(t *testing.T) {
	var observations []Observation
	for i := 0; i < 15; i++ {
		observations = append(observations, Observation{
			Type:    TypeDecision,
			Summary: fmt.Sprintf("decision %02d", i),
			Meta:    Meta{Files: []string{fmt.Sprintf("pkg/file_%02d.go", i), fmt.Sprintf("pkg/other_%02d.go", i)}},
		})
	}
	draft := Synthesize(observations, "")
	if len(draft.KeyDecisions) != maxKeyDecisions {
		t.Fatalf("key decisions len = %d, want %d", len(draft.KeyDecisions), maxKeyDecisions)
	}
	if len(draft.FilesModified) != maxFilesModified {
		t.Fatalf("files modified len = %d, want %d", len(draft.FilesModified), maxFilesModified)
	}
}

func TestSynthesize_EmptyInput(t *testing.T) {
	draft := Synthesize(nil, "")
	if draft.Summary != "Session with 0 observations." {
		t.Fatalf("empty narrative = %q", draft.Summary)
	}
	if len(draft.KeyDecisions) != 0 || len(draft.FilesModified) != 0 {
		t.Fatalf("empty input must yield empty lists: %+v", draft)
	}
}
