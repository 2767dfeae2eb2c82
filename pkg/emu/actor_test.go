package emu

import (
	"context"
	"errors"
	"testing"
)

func TestActorSerializesCommands(t *testing.T) {
	scripted := NewScripted()
	actor := StartActor(scripted)
	defer actor.Stop()

	ctx := context.Background()
	if err := actor.Tick(ctx, 3); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if _, err := actor.PressButtons(ctx, []Button{ButtonA, ButtonStart}, true); err != nil {
		t.Fatalf("press: %v", err)
	}
	if got := scripted.Frames(); got != 3 {
		t.Fatalf("frames = %d", got)
	}
	presses := scripted.Presses()
	if len(presses) != 1 || len(presses[0].Buttons) != 2 {
		t.Fatalf("presses = %+v", presses)
	}
}

func TestActorStopIsIdempotentAndStopsFacade(t *testing.T) {
	scripted := NewScripted()
	actor := StartActor(scripted)

	actor.Stop()
	actor.Stop()

	if !scripted.Stopped() {
		t.Fatal("facade not stopped")
	}
	if err := actor.Tick(context.Background(), 1); !errors.Is(err, ErrActorStopped) {
		t.Fatalf("expected ErrActorStopped, got %v", err)
	}
}

func TestActorHonorsCancellation(t *testing.T) {
	scripted := NewScripted()
	actor := StartActor(scripted)
	defer actor.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := actor.Tick(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestParseButtons(t *testing.T) {
	buttons, err := ParseButtons([]string{"a", "b", "start", "select", "up", "down", "left", "right"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(buttons) != 8 {
		t.Fatalf("buttons = %d", len(buttons))
	}

	if _, err := ParseButtons([]string{"a", "turbo"}); err == nil {
		t.Fatal("expected error for unknown button")
	}
}
