package emu

import "image"

// Facade is the opaque emulator handle. Implementations own frame timing
// internally for high-level actions: PressButtons and FindPath replay advance
// whatever frames they need without the caller ticking for them.
type Facade interface {
	// Initialize boots the emulator.
	Initialize() error
	// LoadState restores a previously saved emulator state.
	LoadState(path string) error
	// Tick advances the emulator by the given number of frames.
	Tick(frames int) error
	// Screenshot renders the current frame.
	Screenshot() (image.Image, error)
	// StateFromMemory derives a textual game-state description from memory.
	StateFromMemory() (string, error)
	// Location names the player's current location, empty when unknown.
	Location() (string, error)
	// ActiveDialog returns on-screen dialog text, empty when none.
	ActiveDialog() (string, error)
	// CollisionMap renders a textual walkability grid, empty when
	// unavailable.
	CollisionMap() (string, error)
	// PressButtons presses each button in order, optionally waiting after
	// each press, and reports what happened.
	PressButtons(buttons []Button, wait bool) (string, error)
	// FindPath solves for a walk to the grid cell (row, col). It returns a
	// solver status and the ordered directional moves; an empty path means
	// no route exists.
	FindPath(row, col int) (status string, path []Button, err error)
	// Stop shuts the emulator down.
	Stop() error
}
