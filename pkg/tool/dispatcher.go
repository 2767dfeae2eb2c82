package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/emberfall/gbagent/pkg/emu"
	"github.com/emberfall/gbagent/pkg/model"
)

// Dispatcher routes tool calls from the reasoning service onto the emulator
// actor. Reports returned by Dispatch are free-form text consumed only for
// local observability; they never re-enter the conversation.
type Dispatcher struct {
	actor     *emu.Actor
	log       zerolog.Logger
	navigator bool
}

// NewDispatcher builds a Dispatcher. When navigator is false, navigate_to is
// treated as an unknown tool.
func NewDispatcher(actor *emu.Actor, log zerolog.Logger, navigator bool) *Dispatcher {
	return &Dispatcher{actor: actor, log: log, navigator: navigator}
}

// Specs returns the tool vocabulary this dispatcher accepts.
func (d *Dispatcher) Specs() []model.ToolSpec {
	return Specs(d.navigator)
}

// Dispatch executes one tool call and returns its report. Argument decode
// failures are logged and replaced with defaults; an unrecognized tool name
// produces an error report without touching the emulator. Dispatch never
// returns a Go error to the step loop.
func (d *Dispatcher) Dispatch(ctx context.Context, call model.ToolCall) string {
	d.log.Info().Str("tool", call.Name).Msg("processing tool call")

	switch call.Name {
	case NamePressButtons:
		return d.pressButtons(ctx, call)
	case NameNavigateTo:
		if d.navigator {
			return d.navigateTo(ctx, call)
		}
	}

	d.log.Error().Str("tool", call.Name).Msg("unknown tool called")
	return fmt.Sprintf("Error: Unknown tool '%s'", call.Name)
}

func (d *Dispatcher) pressButtons(ctx context.Context, call model.ToolCall) string {
	args, err := DecodePressButtonsArgs(call.RawArgs)
	if err != nil {
		d.log.Error().Err(err).
			Str("tool", call.Name).
			Str("raw_args", string(call.RawArgs)).
			Msg("failed to decode tool arguments, using defaults")
	}

	names := emu.ButtonNames(args.Buttons)
	d.log.Info().Strs("buttons", names).Bool("wait", args.Wait).Msg("pressing buttons")

	if _, err := d.actor.PressButtons(ctx, args.Buttons, args.Wait); err != nil {
		d.log.Error().Err(err).Msg("button press failed")
		return fmt.Sprintf("Error processing button press: %v", err)
	}

	return d.composeStateReport(ctx, fmt.Sprintf("Action: Pressed buttons: %s", strings.Join(names, ", ")))
}

func (d *Dispatcher) navigateTo(ctx context.Context, call model.ToolCall) string {
	args, err := DecodeNavigateArgs(call.RawArgs)
	if err != nil {
		d.log.Error().Err(err).
			Str("tool", call.Name).
			Str("raw_args", string(call.RawArgs)).
			Msg("failed to decode tool arguments, using defaults")
	}

	d.log.Info().Int("row", args.Row).Int("col", args.Col).Msg("navigating")

	status, path, err := d.actor.FindPath(ctx, args.Row, args.Col)
	if err != nil {
		d.log.Error().Err(err).Msg("path solver failed")
		return fmt.Sprintf("Error processing navigation: %v", err)
	}
	if len(path) == 0 {
		// Solver declined; nothing was pressed. Failure is an outcome, not
		// an error.
		return fmt.Sprintf("Navigation failed: %s", status)
	}

	for _, move := range path {
		if _, err := d.actor.PressButtons(ctx, []emu.Button{move}, true); err != nil {
			d.log.Error().Err(err).Str("move", string(move)).Msg("path replay failed")
			return fmt.Sprintf("Error processing navigation: %v", err)
		}
	}

	summary := fmt.Sprintf("Navigation successful: followed path with %d steps. Status: %s", len(path), status)
	return d.composeStateReport(ctx, summary)
}

// composeStateReport appends the post-action observable state to an action
// summary: location, dialog when present, and the memory-derived state. The
// collision map is logged only.
func (d *Dispatcher) composeStateReport(ctx context.Context, summary string) string {
	location, err := d.actor.Location(ctx)
	if err != nil || location == "" {
		location = "Unknown location"
	}
	dialog, _ := d.actor.ActiveDialog(ctx)
	state, err := d.actor.StateFromMemory(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("reading memory state failed")
	}

	d.log.Debug().Str("state", state).Msg("memory state after action")
	if collision, err := d.actor.CollisionMap(ctx); err == nil && collision != "" {
		d.log.Debug().Str("collision_map", collision).Msg("collision map after action")
	}

	lines := []string{summary, fmt.Sprintf("Location: %s", location)}
	if dialog != "" {
		lines = append(lines, fmt.Sprintf("Dialog: %s", dialog))
	}
	lines = append(lines, fmt.Sprintf("Game State:\n%s", state))
	return strings.Join(lines, "\n")
}
