package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"

	"paperflow-hq/paperflow/pkg/audit"
	"paperflow-hq/paperflow/pkg/policy"
)

// fakeHandler records invocations and returns a canned result per call.
type fakeHandler struct {
	kind    policy.ActionKind
	results []*ActionResult
	calls   []*ExecContext
}

func (f *fakeHandler) Kind() policy.ActionKind { return f.kind }

func (f *fakeHandler) Execute(ctx context.Context, ec *ExecContext) *ActionResult {
	f.calls = append(f.calls, ec)
	res := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return res
}

type captureSink struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (c *captureSink) Record(ctx context.Context, event *audit.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

type captureStore struct {
	userID, documentID, path, name string
	err                            error
}

func (c *captureStore) UpdateDocumentLocation(ctx context.Context, userID, documentID, path, name string) error {
	c.userID, c.documentID, c.path, c.name = userID, documentID, path, name
	return c.err
}

func testPolicy(kinds ...policy.ActionKind) *policy.Policy {
	p := &policy.Policy{PolicyID: "pol-1"}
	p.Metadata.ID = "pol-1"
	for _, k := range kinds {
		p.Spec.Actions = append(p.Spec.Actions, policy.ActionSpec{Kind: k})
	}
	return p
}

func TestRunnerThreadsFileStateAndOutputs(t *testing.T) {
	first := &fakeHandler{
		kind: policy.ActionRename,
		results: []*ActionResult{
			Succeed("renamed", NewTraceEvent("rename", nil)).WithNewFile("/docs/new.pdf", "new.pdf"),
		},
	}
	second := &fakeHandler{
		kind: policy.ActionNotify,
		results: []*ActionResult{
			Succeed("notified").WithOutputs(map[string]string{"link": "https://example.com/f"}),
		},
	}
	store := &captureStore{}
	runner := NewRunner([]Handler{first, second}, store, nil, nil)

	res := runner.Run(context.Background(), &RunRequest{
		Policy:     testPolicy(policy.ActionRename, policy.ActionNotify),
		File:       FileState{Path: "/docs/old.pdf", Name: "old.pdf"},
		UserID:     "u1",
		DocumentID: "d1",
	})

	if !res.Success {
		t.Fatalf("Run failed: %v", res.Err)
	}
	if res.File.Name != "new.pdf" || res.File.Path != "/docs/new.pdf" {
		t.Errorf("final file = %+v, want renamed state", res.File)
	}
	if len(second.calls) != 1 {
		t.Fatalf("second handler called %d times, want 1", len(second.calls))
	}
	if got := second.calls[0].File.Name; got != "new.pdf" {
		t.Errorf("second handler saw file %q, want new.pdf", got)
	}
	if res.Outputs["link"] != "https://example.com/f" {
		t.Errorf("outputs = %v, missing link", res.Outputs)
	}
	if store.path != "/docs/new.pdf" || store.documentID != "d1" {
		t.Errorf("location not persisted: %+v", store)
	}
}

func TestRunnerHaltsOnFirstFailure(t *testing.T) {
	failing := &fakeHandler{
		kind:    policy.ActionWebhook,
		results: []*ActionResult{Fail(errors.New("boom"), map[string]any{"url": "x"})},
	}
	never := &fakeHandler{
		kind:    policy.ActionNotify,
		results: []*ActionResult{Succeed("should not run")},
	}
	runner := NewRunner([]Handler{failing, never}, nil, nil, nil)

	res := runner.Run(context.Background(), &RunRequest{
		Policy: testPolicy(policy.ActionWebhook, policy.ActionNotify),
		File:   FileState{Path: "/docs/a.pdf", Name: "a.pdf"},
	})

	if res.Success {
		t.Fatal("Run succeeded, want failure")
	}
	if res.FailedKind != policy.ActionWebhook {
		t.Errorf("FailedKind = %q, want webhook", res.FailedKind)
	}
	if len(never.calls) != 0 {
		t.Errorf("later handler ran %d times after failure", len(never.calls))
	}
	if res.File.Name != "a.pdf" {
		t.Errorf("file = %+v, want original state", res.File)
	}
}

func TestRunnerMapsLegacyMoveToRename(t *testing.T) {
	rename := &fakeHandler{
		kind:    policy.ActionRename,
		results: []*ActionResult{Succeed("renamed")},
	}
	runner := NewRunner([]Handler{rename}, nil, nil, nil)

	res := runner.Run(context.Background(), &RunRequest{
		Policy: testPolicy(policy.ActionMove),
		File:   FileState{Path: "/docs/a.pdf", Name: "a.pdf"},
	})

	if !res.Success {
		t.Fatalf("Run failed: %v", res.Err)
	}
	if len(rename.calls) != 1 {
		t.Errorf("rename handler called %d times, want 1", len(rename.calls))
	}
}

func TestRunnerUnknownKindFails(t *testing.T) {
	runner := NewRunner(nil, nil, nil, nil)

	res := runner.Run(context.Background(), &RunRequest{
		Policy: testPolicy(policy.ActionWebhook),
		File:   FileState{Path: "/docs/a.pdf", Name: "a.pdf"},
	})

	if res.Success {
		t.Fatal("Run succeeded with no handler registered")
	}
	if res.Err == nil {
		t.Fatal("want error for missing handler")
	}
}

func TestRunnerRecordsAuditPerAction(t *testing.T) {
	ok := &fakeHandler{kind: policy.ActionNotify, results: []*ActionResult{Succeed("hi")}}
	bad := &fakeHandler{kind: policy.ActionWebhook, results: []*ActionResult{Fail(errors.New("boom"), nil)}}
	sink := &captureSink{}
	runner := NewRunner([]Handler{ok, bad}, nil, sink, nil)

	runner.Run(context.Background(), &RunRequest{
		Policy:     testPolicy(policy.ActionNotify, policy.ActionWebhook),
		File:       FileState{Path: "/docs/a.pdf", Name: "a.pdf"},
		DocumentID: "d1",
	})

	if len(sink.events) != 2 {
		t.Fatalf("recorded %d audit events, want 2", len(sink.events))
	}
	if sink.events[0].Category != audit.CategoryAction {
		t.Errorf("category = %q, want action", sink.events[0].Category)
	}
	if success, _ := sink.events[1].Details["success"].(bool); success {
		t.Error("second event marked successful, want failure")
	}
}

func TestExecContextLookupOrder(t *testing.T) {
	ec := &ExecContext{
		Vars:    map[string]string{"issuer": "Acme"},
		Outputs: map[string]string{"link": "https://x", "issuer": "shadowed"},
		Data:    map[string]any{"amount": 12.5, "issuer": "raw"},
	}

	cases := []struct {
		name string
		want string
		ok   bool
	}{
		{"issuer", "Acme", true},
		{"link", "https://x", true},
		{"amount", "12.5", true},
		{"missing", "", false},
	}
	for _, tc := range cases {
		got, ok := ec.Lookup(tc.name)
		if got != tc.want || ok != tc.ok {
			t.Errorf("Lookup(%q) = %q, %v; want %q, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}
