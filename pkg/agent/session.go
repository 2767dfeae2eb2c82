// Package agent drives the observe/request/dispatch cycle that lets a
// reasoning service play the game one step at a time.
package agent

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/emberfall/gbagent/pkg/emu"
	"github.com/emberfall/gbagent/pkg/frame"
	"github.com/emberfall/gbagent/pkg/model"
	"github.com/emberfall/gbagent/pkg/tool"
	"github.com/emberfall/gbagent/pkg/transcript"
)

const defaultUpscale = 2

// Config stores the coarse grained settings for a Session.
type Config struct {
	// MaxHistory is the transcript length that triggers compaction.
	MaxHistory int
	// Upscale multiplies frame dimensions before encoding. Zero means the
	// default factor.
	Upscale int
	// Navigator enables the navigate_to tool.
	Navigator bool
	Logger    zerolog.Logger
}

// Session owns one agent's transcript and step loop. It is the only mutator
// of its transcript; the runtime coordinator invokes Run from a single
// worker goroutine.
type Session struct {
	id         string
	reasoner   model.Model
	dispatcher *tool.Dispatcher
	actor      *emu.Actor
	store      *transcript.Store
	log        zerolog.Logger
	upscale    int

	running   atomic.Bool
	stepCount atomic.Int64
}

// NewSession builds a Session and seeds the transcript with the opening
// user turn.
func NewSession(reasoner model.Model, actor *emu.Actor, cfg Config) (*Session, error) {
	if reasoner == nil {
		return nil, errors.New("agent: reasoner model is required")
	}
	if actor == nil {
		return nil, errors.New("agent: emulator actor is required")
	}
	store, err := transcript.NewStore(cfg.MaxHistory)
	if err != nil {
		return nil, err
	}

	upscale := cfg.Upscale
	if upscale <= 0 {
		upscale = defaultUpscale
	}

	s := &Session{
		id:         uuid.NewString(),
		reasoner:   reasoner,
		dispatcher: tool.NewDispatcher(actor, cfg.Logger, cfg.Navigator),
		actor:      actor,
		store:      store,
		log:        cfg.Logger.With().Str("session", "agent").Logger(),
		upscale:    upscale,
	}
	s.running.Store(true)

	if err := store.Append(model.TextMessage(model.RoleUser, openingPrompt)); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Transcript exposes the underlying store, mainly for tests and diagnostics.
func (s *Session) Transcript() *transcript.Store {
	return s.store
}

// Steps reports how many steps have completed over the session lifetime.
func (s *Session) Steps() int {
	return int(s.stepCount.Load())
}

// Stop clears the running flag and releases the emulator actor.
func (s *Session) Stop() {
	if s.running.CompareAndSwap(true, false) {
		s.actor.Stop()
	}
}

// Run executes up to numSteps observe/request/dispatch cycles and returns
// the number completed. Steps are strictly sequential; no two
// reasoning-service requests are ever in flight at once. A context
// cancellation stops the session and returns the completed count; a
// reasoning-service failure propagates to the caller.
func (s *Session) Run(ctx context.Context, numSteps int) (int, error) {
	s.log.Info().Int("steps", numSteps).Msg("starting agent loop")

	completed := 0
	for s.running.Load() && completed < numSteps {
		if err := s.step(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				s.log.Info().Msg("cancellation received, stopping agent loop")
				s.Stop()
				return completed, nil
			}
			return completed, err
		}
		completed++
		s.stepCount.Add(1)
		s.log.Info().Int("step", completed).Int("of", numSteps).Msg("completed step")
	}

	return completed, nil
}

// step performs one full cycle: observe, request, persist the two new turns,
// dispatch every tool call in order, then compact when the threshold is hit.
func (s *Session) step(ctx context.Context) error {
	observation, err := s.observe(ctx)
	if err != nil {
		return err
	}

	req := model.Request{
		System:   systemPrompt,
		Messages: append(s.store.Turns(), observation),
		Tools:    s.dispatcher.Specs(),
	}

	resp, err := s.reasoner.Generate(ctx, req)
	if err != nil {
		return fmt.Errorf("reasoning request: %w", err)
	}

	if text := resp.Text(); text != "" {
		s.log.Info().Str("text", text).Msg("assistant")
	}

	// Persist the observation and the assistant's text only. Tool-call
	// records stay out of the transcript: tool results are only valid as an
	// immediate reply inside the request that produced the call, and this
	// loop never sends one.
	if err := s.store.Append(observation); err != nil {
		return err
	}
	if err := s.store.Append(model.TextMessage(model.RoleAssistant, resp.Text())); err != nil {
		return err
	}

	for _, call := range resp.ToolCalls {
		report := s.dispatcher.Dispatch(ctx, call)
		s.log.Debug().Str("tool", call.Name).Str("report", report).Msg("tool report")
	}

	if s.store.ShouldCompact() {
		if err := s.compactHistory(ctx); err != nil {
			return err
		}
	}

	return nil
}

// observe captures the current frame and memory-derived state as one user
// turn.
func (s *Session) observe(ctx context.Context) (model.Message, error) {
	img, err := s.actor.Screenshot(ctx)
	if err != nil {
		return model.Message{}, fmt.Errorf("capture frame: %w", err)
	}
	encoded, err := frame.EncodeDataURI(img, s.upscale)
	if err != nil {
		return model.Message{}, err
	}
	state, err := s.actor.StateFromMemory(ctx)
	if err != nil {
		return model.Message{}, fmt.Errorf("read memory state: %w", err)
	}

	return model.Message{
		Role: model.RoleUser,
		Parts: []model.Part{
			model.TextPart(fmt.Sprintf(observationPrompt, state)),
			model.ImagePart(encoded),
		},
	}, nil
}
