// Package runtime hosts the dual-phase coordinator: a foreground loop that
// owns real-time emulator ticking and operator input, and, after handoff, a
// background worker that runs the agent's step loop. Both reach the emulator
// through its actor, so the shared timeline only ever advances from the
// actor's goroutine.
package runtime

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"

	"github.com/emberfall/gbagent/pkg/agent"
	"github.com/emberfall/gbagent/pkg/emu"
)

const (
	defaultStepBatch = 10
	workerIdlePause  = 100 * time.Millisecond
)

// Coordinator arbitrates manual vs. autonomous control over one emulator
// actor and one agent session.
type Coordinator struct {
	actor   *emu.Actor
	session *agent.Session
	keys    KeySource
	log     zerolog.Logger

	speed     SpeedProfile
	stepBatch int
}

// NewCoordinator builds a Coordinator. stepBatch is the number of agent
// steps per worker iteration; zero means the default batch.
func NewCoordinator(actor *emu.Actor, session *agent.Session, keys KeySource, log zerolog.Logger, stepBatch int) *Coordinator {
	if stepBatch <= 0 {
		stepBatch = defaultStepBatch
	}
	return &Coordinator{
		actor:     actor,
		session:   session,
		keys:      keys,
		log:       log,
		speed:     NormalSpeed(),
		stepBatch: stepBatch,
	}
}

// Run executes the manual phase until handoff, then the autonomous phase
// until quit or cancellation. The handoff is one-directional; a session
// never returns to manual control.
func (c *Coordinator) Run(ctx context.Context) error {
	if !c.manualPhase(ctx) {
		// Cancelled before handoff; the emulator is already stopped.
		return ctx.Err()
	}

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		c.workerLoop(workerCtx)
	}()

	c.autonomousPhase(ctx)

	cancelWorker()
	<-workerDone
	c.session.Stop()
	return nil
}

// manualPhase keeps the game running in real time while the operator plays.
// It returns true on handoff, false on cancellation.
func (c *Coordinator) manualPhase(ctx context.Context) bool {
	c.log.Info().Msg("game initialized, manual play active; press '8' to hand off to the agent")

	for {
		if ctx.Err() != nil {
			c.log.Info().Msg("cancelled during manual phase, exiting")
			c.session.Stop()
			return false
		}
		if err := c.actor.Tick(ctx, c.speed.FramesPerTick); err != nil {
			c.log.Error().Err(err).Msg("emulator tick failed")
		}

		select {
		case key := <-c.keys.Keys():
			switch key {
			case keyHandoff:
				return true
			case keyInterrupt:
				c.log.Info().Msg("interrupt during manual phase, exiting")
				c.session.Stop()
				return false
			default:
				c.handleSpeedKey(key)
			}
		default:
		}

		time.Sleep(c.speed.TickInterval)
	}
}

// autonomousPhase continues ticking and polling in the foreground while the
// worker drives the agent. It returns on quit key or cancellation.
func (c *Coordinator) autonomousPhase(ctx context.Context) {
	c.log.Info().Msg("agent is now playing; press 'q' to quit or use speed controls (-/=)")

	for {
		if ctx.Err() != nil {
			c.log.Info().Msg("cancelled, shutting down")
			return
		}
		if err := c.actor.Tick(ctx, c.speed.FramesPerTick); err != nil {
			c.log.Error().Err(err).Msg("emulator tick failed")
		}

		select {
		case key := <-c.keys.Keys():
			switch key {
			case keyQuit, keyQuitUpper, keyInterrupt:
				c.log.Info().Msg("quitting")
				return
			default:
				c.handleSpeedKey(key)
			}
		default:
		}

		time.Sleep(c.speed.TickInterval)
	}
}

func (c *Coordinator) handleSpeedKey(key byte) {
	switch key {
	case keySlow:
		c.log.Info().Msg("[speed] setting emulator to ~60fps")
		c.speed = NormalSpeed()
	case keyFast, keyFastAlt:
		c.log.Info().Msg("[speed] setting emulator to ~300fps")
		c.speed = FastSpeed()
	}
}

// workerLoop runs step batches until its context is cancelled or the session
// fails. Panics and errors are contained here; they never reach the
// foreground loop.
func (c *Coordinator) workerLoop(ctx context.Context) {
	c.log.Info().Msg("agent worker started - will keep playing until stopped")

	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("cancellation in agent worker, stopping worker only")
			return
		default:
		}

		var (
			completed int
			runErr    error
		)
		recovered := panics.Try(func() {
			completed, runErr = c.session.Run(ctx, c.stepBatch)
		})
		if recovered != nil {
			c.log.Error().Str("panic", recovered.String()).Msg("agent worker panicked")
			return
		}
		if runErr != nil {
			c.log.Error().Err(runErr).Int("completed", completed).Msg("agent loop failed")
			return
		}

		time.Sleep(workerIdlePause)
	}
}
