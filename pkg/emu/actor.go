package emu

import (
	"context"
	"errors"
	"image"
	"sync"
)

// ErrActorStopped reports commands sent after the actor shut down.
var ErrActorStopped = errors.New("emu: actor stopped")

// Actor owns a Facade behind a command channel. Every caller, whether the
// real-time tick loop or the autonomous worker, goes through the actor, so
// the emulator's timeline only ever advances from one goroutine.
type Actor struct {
	cmds     chan func(Facade)
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// StartActor spawns the owner goroutine for the given facade. The facade
// must not be used directly once handed over.
func StartActor(f Facade) *Actor {
	a := &Actor{
		cmds: make(chan func(Facade)),
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	go a.loop(f)
	return a
}

func (a *Actor) loop(f Facade) {
	defer close(a.done)
	for {
		select {
		case <-a.quit:
			_ = f.Stop()
			return
		case cmd := <-a.cmds:
			cmd(f)
		}
	}
}

// do runs fn on the owner goroutine and waits for it to finish.
func (a *Actor) do(ctx context.Context, fn func(Facade)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ran := make(chan struct{})
	wrapped := func(f Facade) {
		fn(f)
		close(ran)
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-a.quit:
		return ErrActorStopped
	case a.cmds <- wrapped:
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ran:
		return nil
	}
}

// Tick advances the emulator by frames.
func (a *Actor) Tick(ctx context.Context, frames int) error {
	var err error
	if derr := a.do(ctx, func(f Facade) { err = f.Tick(frames) }); derr != nil {
		return derr
	}
	return err
}

// LoadState restores a saved emulator state.
func (a *Actor) LoadState(ctx context.Context, path string) error {
	var err error
	if derr := a.do(ctx, func(f Facade) { err = f.LoadState(path) }); derr != nil {
		return derr
	}
	return err
}

// PressButtons presses the sequence in order.
func (a *Actor) PressButtons(ctx context.Context, buttons []Button, wait bool) (string, error) {
	var (
		report string
		err    error
	)
	if derr := a.do(ctx, func(f Facade) { report, err = f.PressButtons(buttons, wait) }); derr != nil {
		return "", derr
	}
	return report, err
}

// FindPath runs the facade's path solver.
func (a *Actor) FindPath(ctx context.Context, row, col int) (string, []Button, error) {
	var (
		status string
		path   []Button
		err    error
	)
	if derr := a.do(ctx, func(f Facade) { status, path, err = f.FindPath(row, col) }); derr != nil {
		return "", nil, derr
	}
	return status, path, err
}

// Screenshot renders the current frame.
func (a *Actor) Screenshot(ctx context.Context) (image.Image, error) {
	var (
		img image.Image
		err error
	)
	if derr := a.do(ctx, func(f Facade) { img, err = f.Screenshot() }); derr != nil {
		return nil, derr
	}
	return img, err
}

// StateFromMemory derives the textual game-state description.
func (a *Actor) StateFromMemory(ctx context.Context) (string, error) {
	return a.text(ctx, Facade.StateFromMemory)
}

// Location names the current location, empty when unknown.
func (a *Actor) Location(ctx context.Context) (string, error) {
	return a.text(ctx, Facade.Location)
}

// ActiveDialog returns any on-screen dialog text.
func (a *Actor) ActiveDialog(ctx context.Context) (string, error) {
	return a.text(ctx, Facade.ActiveDialog)
}

// CollisionMap renders the textual walkability grid.
func (a *Actor) CollisionMap(ctx context.Context) (string, error) {
	return a.text(ctx, Facade.CollisionMap)
}

func (a *Actor) text(ctx context.Context, op func(Facade) (string, error)) (string, error) {
	var (
		out string
		err error
	)
	if derr := a.do(ctx, func(f Facade) { out, err = op(f) }); derr != nil {
		return "", derr
	}
	return out, err
}

// Stop shuts the owner goroutine down and stops the facade. Safe to call
// more than once.
func (a *Actor) Stop() {
	a.stopOnce.Do(func() { close(a.quit) })
	<-a.done
}
