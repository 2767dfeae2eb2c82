package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/emberfall/gbagent/pkg/emu"
	"github.com/emberfall/gbagent/pkg/model"
)

// fakeModel returns queued assistant messages for tool-bearing requests and
// a fixed recap for summary requests (identified by their lack of tools).
type fakeModel struct {
	mu        sync.Mutex
	queued    []model.Message
	requests  []model.Request
	summaries int
	err       error
}

func (f *fakeModel) Generate(_ context.Context, req model.Request) (model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.err != nil {
		return model.Message{}, f.err
	}
	if len(req.Tools) == 0 {
		f.summaries++
		return model.TextMessage(model.RoleAssistant, "recap of the adventure"), nil
	}
	if len(f.queued) == 0 {
		return model.TextMessage(model.RoleAssistant, "thinking"), nil
	}
	next := f.queued[0]
	f.queued = f.queued[1:]
	return next, nil
}

func (f *fakeModel) summaryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries
}

func (f *fakeModel) lastRequest() model.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

func newSessionForTest(t *testing.T, reasoner model.Model, maxHistory int) (*Session, *emu.Scripted) {
	t.Helper()
	scripted := emu.NewScripted()
	actor := emu.StartActor(scripted)
	t.Cleanup(actor.Stop)

	session, err := NewSession(reasoner, actor, Config{
		MaxHistory: maxHistory,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session, scripted
}

func TestSessionStepAppendsTwoTurns(t *testing.T) {
	reasoner := &fakeModel{}
	session, _ := newSessionForTest(t, reasoner, 30)

	before := session.Transcript().Len()
	completed, err := session.Run(context.Background(), 1)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if completed != 1 {
		t.Fatalf("completed = %d", completed)
	}
	if got := session.Transcript().Len(); got != before+2 {
		t.Fatalf("transcript grew by %d, want 2", got-before)
	}

	turns := session.Transcript().Turns()
	userTurn := turns[len(turns)-2]
	if userTurn.Role != model.RoleUser {
		t.Fatalf("persisted observation role = %s", userTurn.Role)
	}
	var hasImage bool
	for _, part := range userTurn.Parts {
		if part.Kind == model.PartImage {
			hasImage = true
		}
	}
	if !hasImage {
		t.Fatal("observation turn has no image part")
	}

	assistantTurn := turns[len(turns)-1]
	if assistantTurn.Role != model.RoleAssistant {
		t.Fatalf("persisted response role = %s", assistantTurn.Role)
	}
	if len(assistantTurn.ToolCalls) != 0 {
		t.Fatal("tool-call records must not be persisted")
	}
}

func TestSessionDispatchesToolCallsInOrder(t *testing.T) {
	reasoner := &fakeModel{
		queued: []model.Message{
			{
				Role:  model.RoleAssistant,
				Parts: []model.Part{model.TextPart("pressing start then a")},
				ToolCalls: []model.ToolCall{
					{ID: "t1", Name: "press_buttons", RawArgs: json.RawMessage(`{"buttons":["start"]}`)},
					{ID: "t2", Name: "press_buttons", RawArgs: json.RawMessage(`{"buttons":["a"]}`)},
				},
			},
		},
	}
	session, scripted := newSessionForTest(t, reasoner, 30)

	if _, err := session.Run(context.Background(), 1); err != nil {
		t.Fatalf("run: %v", err)
	}

	presses := scripted.Presses()
	if len(presses) != 2 {
		t.Fatalf("presses = %d", len(presses))
	}
	if presses[0].Buttons[0] != emu.ButtonStart || presses[1].Buttons[0] != emu.ButtonA {
		t.Fatalf("press order = %v, %v", presses[0].Buttons, presses[1].Buttons)
	}
}

func TestSessionRequestShape(t *testing.T) {
	reasoner := &fakeModel{}
	session, _ := newSessionForTest(t, reasoner, 30)

	if _, err := session.Run(context.Background(), 1); err != nil {
		t.Fatalf("run: %v", err)
	}

	req := reasoner.lastRequest()
	if req.System == "" {
		t.Fatal("request missing system prompt")
	}
	if len(req.Tools) != 1 || req.Tools[0].Name != "press_buttons" {
		t.Fatalf("tools = %+v", req.Tools)
	}
	last := req.Messages[len(req.Messages)-1]
	if last.Role != model.RoleUser {
		t.Fatalf("trailing request turn role = %s", last.Role)
	}
}

func TestSessionCompaction(t *testing.T) {
	// maxHistory 4: the seeded opening turn plus two steps crosses the
	// threshold mid-second-step.
	reasoner := &fakeModel{}
	session, _ := newSessionForTest(t, reasoner, 4)

	if _, err := session.Run(context.Background(), 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := session.Transcript().Len(); got != 3 {
		t.Fatalf("len after first step = %d", got)
	}
	if reasoner.summaryCount() != 0 {
		t.Fatal("compaction ran early")
	}

	if _, err := session.Run(context.Background(), 1); err != nil {
		t.Fatalf("run: %v", err)
	}
	if reasoner.summaryCount() != 1 {
		t.Fatalf("summary requests = %d", reasoner.summaryCount())
	}
	if got := session.Transcript().Len(); got != 1 {
		t.Fatalf("len after compaction = %d", got)
	}

	turn := session.Transcript().Turns()[0]
	if turn.Role != model.RoleUser {
		t.Fatalf("summary turn role = %s", turn.Role)
	}
	if len(turn.Parts) != 3 {
		t.Fatalf("summary turn parts = %d", len(turn.Parts))
	}
	if turn.Parts[0].Kind != model.PartText || turn.Parts[1].Kind != model.PartImage || turn.Parts[2].Kind != model.PartText {
		t.Fatalf("summary part kinds = %s, %s, %s", turn.Parts[0].Kind, turn.Parts[1].Kind, turn.Parts[2].Kind)
	}
	// The recap label reports the configured history threshold.
	if !strings.Contains(turn.Parts[0].Text, "representing 4 previous messages") {
		t.Fatalf("recap label = %q", turn.Parts[0].Text)
	}
}

func TestSessionServiceFailurePropagates(t *testing.T) {
	wantErr := errors.New("service unavailable")
	reasoner := &fakeModel{err: wantErr}
	session, _ := newSessionForTest(t, reasoner, 30)

	completed, err := session.Run(context.Background(), 3)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected service error, got %v", err)
	}
	if completed != 0 {
		t.Fatalf("completed = %d", completed)
	}
}

func TestSessionCancellationStops(t *testing.T) {
	reasoner := &fakeModel{}
	session, scripted := newSessionForTest(t, reasoner, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	completed, err := session.Run(ctx, 5)
	if err != nil {
		t.Fatalf("cancellation must not surface an error, got %v", err)
	}
	if completed != 0 {
		t.Fatalf("completed = %d", completed)
	}
	if !scripted.Stopped() {
		t.Fatal("emulator was not released on cancellation")
	}

	// The session stays stopped: further runs complete nothing.
	if n, err := session.Run(context.Background(), 1); err != nil || n != 0 {
		t.Fatalf("stopped session ran: n=%d err=%v", n, err)
	}
}
