// Package tool validates and executes the actions the reasoning service may
// take against the emulator. The vocabulary is fixed: press_buttons always,
// navigate_to only when the navigator feature is enabled.
package tool

import "github.com/emberfall/gbagent/pkg/model"

// Tool names recognized by the dispatcher.
const (
	NamePressButtons = "press_buttons"
	NameNavigateTo   = "navigate_to"
)

var pressButtonsSchema = &JSONSchema{
	Type: "object",
	Properties: map[string]any{
		"buttons": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "string",
				"enum": []string{"a", "b", "start", "select", "up", "down", "left", "right"},
			},
			"description": "List of buttons to press in sequence. Valid buttons: 'a', 'b', 'start', 'select', 'up', 'down', 'left', 'right'",
		},
		"wait": map[string]any{
			"type":        "boolean",
			"description": "Whether to wait for a brief period after pressing each button. Defaults to true.",
		},
	},
	Required: []string{"buttons"},
}

var navigateToSchema = &JSONSchema{
	Type: "object",
	Properties: map[string]any{
		"row": map[string]any{
			"type":        "integer",
			"description": "The row coordinate to navigate to (0-8).",
		},
		"col": map[string]any{
			"type":        "integer",
			"description": "The column coordinate to navigate to (0-9).",
		},
	},
	Required: []string{"row", "col"},
}

// Specs returns the tool specifications to attach to each reasoning-service
// request.
func Specs(navigator bool) []model.ToolSpec {
	specs := []model.ToolSpec{
		{
			Name:        NamePressButtons,
			Description: "Press a sequence of buttons on the Game Boy.",
			Schema:      pressButtonsSchema,
		},
	}
	if navigator {
		specs = append(specs, model.ToolSpec{
			Name:        NameNavigateTo,
			Description: "Automatically navigate to a position on the map grid. The screen is divided into a 9x10 grid, with the top-left corner as (0, 0). This tool is only available in the overworld.",
			Schema:      navigateToSchema,
		})
	}
	return specs
}
