package runtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/emberfall/gbagent/pkg/agent"
	"github.com/emberfall/gbagent/pkg/emu"
	"github.com/emberfall/gbagent/pkg/model"
)

type stubKeys struct {
	ch chan byte
}

func (s *stubKeys) Keys() <-chan byte { return s.ch }

type idleModel struct{}

func (idleModel) Generate(context.Context, model.Request) (model.Message, error) {
	return model.TextMessage(model.RoleAssistant, "waiting"), nil
}

func newCoordinatorForTest(t *testing.T, keys KeySource) (*Coordinator, *emu.Scripted) {
	t.Helper()
	scripted := emu.NewScripted()
	actor := emu.StartActor(scripted)
	t.Cleanup(actor.Stop)

	session, err := agent.NewSession(idleModel{}, actor, agent.Config{
		MaxHistory: 30,
		Logger:     zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewCoordinator(actor, session, keys, zerolog.Nop(), 2), scripted
}

func TestCoordinatorHandoffThenQuit(t *testing.T) {
	keys := &stubKeys{ch: make(chan byte, 4)}
	keys.ch <- keyFast // speed change must not consume the handoff
	keys.ch <- keyHandoff
	keys.ch <- keyQuit

	coord, scripted := newCoordinatorForTest(t, keys)

	done := make(chan error, 1)
	go func() { done <- coord.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not shut down")
	}

	if !scripted.Stopped() {
		t.Fatal("emulator was not released on quit")
	}
	if scripted.Frames() == 0 {
		t.Fatal("foreground loop never ticked the emulator")
	}
}

func TestCoordinatorCancelledBeforeHandoff(t *testing.T) {
	keys := &stubKeys{ch: make(chan byte, 1)}
	coord, scripted := newCoordinatorForTest(t, keys)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := coord.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !scripted.Stopped() {
		t.Fatal("emulator was not released on cancellation")
	}
}

func TestCoordinatorCancelledAfterHandoff(t *testing.T) {
	keys := &stubKeys{ch: make(chan byte, 1)}
	keys.ch <- keyHandoff

	coord, scripted := newCoordinatorForTest(t, keys)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	done := make(chan error, 1)
	go func() { done <- coord.Run(ctx) }()

	select {
	case err := <-done:
		// Cancellation after handoff is the orderly shutdown path.
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("coordinator did not shut down")
	}

	if !scripted.Stopped() {
		t.Fatal("emulator was not released on cancellation")
	}
}

func TestSpeedProfiles(t *testing.T) {
	normal := NormalSpeed()
	fast := FastSpeed()
	if fast.FramesPerTick <= normal.FramesPerTick {
		t.Fatalf("fast profile runs %d frames per tick, normal %d", fast.FramesPerTick, normal.FramesPerTick)
	}
	if normal.TickInterval != fast.TickInterval {
		t.Fatal("speed comes from frames per tick, not the tick interval")
	}
}
