package tool

import (
	"encoding/json"
	"fmt"

	"github.com/emberfall/gbagent/pkg/emu"
)

// PressButtonsArgs is the typed argument record for press_buttons.
type PressButtonsArgs struct {
	Buttons []emu.Button
	Wait    bool
}

// NavigateArgs is the typed argument record for navigate_to.
type NavigateArgs struct {
	Row int
	Col int
}

// DefaultPressButtonsArgs is substituted when the raw payload cannot be
// decoded: no presses, wait enabled.
func DefaultPressButtonsArgs() PressButtonsArgs {
	return PressButtonsArgs{Wait: true}
}

// DecodePressButtonsArgs parses and validates a raw press_buttons payload.
func DecodePressButtonsArgs(raw json.RawMessage) (PressButtonsArgs, error) {
	params, err := unmarshalParams(raw)
	if err != nil {
		return DefaultPressButtonsArgs(), err
	}
	if err := ValidateParams(params, pressButtonsSchema); err != nil {
		return DefaultPressButtonsArgs(), err
	}

	var payload struct {
		Buttons []string `json:"buttons"`
		Wait    *bool    `json:"wait"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return DefaultPressButtonsArgs(), fmt.Errorf("decode press_buttons arguments: %w", err)
	}

	buttons, err := emu.ParseButtons(payload.Buttons)
	if err != nil {
		return DefaultPressButtonsArgs(), fmt.Errorf("decode press_buttons arguments: %w", err)
	}

	args := PressButtonsArgs{Buttons: buttons, Wait: true}
	if payload.Wait != nil {
		args.Wait = *payload.Wait
	}
	return args, nil
}

// DecodeNavigateArgs parses and validates a raw navigate_to payload,
// enforcing the screen grid bounds.
func DecodeNavigateArgs(raw json.RawMessage) (NavigateArgs, error) {
	params, err := unmarshalParams(raw)
	if err != nil {
		return NavigateArgs{}, err
	}
	if err := ValidateParams(params, navigateToSchema); err != nil {
		return NavigateArgs{}, err
	}

	var payload struct {
		Row int `json:"row"`
		Col int `json:"col"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return NavigateArgs{}, fmt.Errorf("decode navigate_to arguments: %w", err)
	}
	if payload.Row < 0 || payload.Row >= emu.GridRows {
		return NavigateArgs{}, fmt.Errorf("navigate_to row %d outside grid 0-%d", payload.Row, emu.GridRows-1)
	}
	if payload.Col < 0 || payload.Col >= emu.GridCols {
		return NavigateArgs{}, fmt.Errorf("navigate_to col %d outside grid 0-%d", payload.Col, emu.GridCols-1)
	}
	return NavigateArgs{Row: payload.Row, Col: payload.Col}, nil
}

func unmarshalParams(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 {
		return map[string]any{}, nil
	}
	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decode tool arguments: %w", err)
	}
	return params, nil
}
