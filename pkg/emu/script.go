package emu

import (
	"image"
	"image/color"
	"sync"
)

// PressRecord remembers one PressButtons invocation against a Scripted
// facade.
type PressRecord struct {
	Buttons []Button
	Wait    bool
}

// Scripted is an in-memory Facade with canned responses. It backs tests and
// the --dry-run mode of the CLI, where no emulator sidecar is attached.
type Scripted struct {
	mu sync.Mutex

	StateText     string
	LocationText  string
	DialogText    string
	CollisionText string
	PathStatus    string
	PathMoves     []Button

	frames      int
	presses     []PressRecord
	initialized bool
	loadedState string
	stopped     bool
}

// NewScripted builds a Scripted facade with plausible defaults.
func NewScripted() *Scripted {
	return &Scripted{
		StateText:    "Player: RED\nBadges: 0\nPosition: (5, 4)",
		LocationText: "PALLET TOWN",
		PathStatus:   "success",
	}
}

// Initialize marks the facade booted.
func (s *Scripted) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
	return nil
}

// LoadState records the requested state path.
func (s *Scripted) LoadState(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadedState = path
	return nil
}

// Tick advances the frame counter.
func (s *Scripted) Tick(frames int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames += frames
	return nil
}

// Frames reports how many frames have been ticked.
func (s *Scripted) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Screenshot renders a synthetic frame whose pixels depend only on the frame
// counter, so an unticked facade always produces byte-identical frames.
func (s *Scripted) Screenshot() (image.Image, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img := image.NewRGBA(image.Rect(0, 0, 160, 144))
	shade := uint8(s.frames % 256)
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			img.SetRGBA(x, y, color.RGBA{R: shade, G: uint8(x % 256), B: uint8(y % 256), A: 255})
		}
	}
	return img, nil
}

// StateFromMemory returns the canned state text.
func (s *Scripted) StateFromMemory() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.StateText, nil
}

// Location returns the canned location.
func (s *Scripted) Location() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.LocationText, nil
}

// ActiveDialog returns the canned dialog text.
func (s *Scripted) ActiveDialog() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.DialogText, nil
}

// CollisionMap returns the canned collision grid.
func (s *Scripted) CollisionMap() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.CollisionText, nil
}

// PressButtons records the press and acknowledges it.
func (s *Scripted) PressButtons(buttons []Button, wait bool) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presses = append(s.presses, PressRecord{
		Buttons: append([]Button(nil), buttons...),
		Wait:    wait,
	})
	return "ok", nil
}

// Presses returns every recorded press in order.
func (s *Scripted) Presses() []PressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PressRecord, len(s.presses))
	copy(out, s.presses)
	return out
}

// FindPath returns the canned solver outcome.
func (s *Scripted) FindPath(row, col int) (string, []Button, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.PathStatus, append([]Button(nil), s.PathMoves...), nil
}

// Stop marks the facade stopped.
func (s *Scripted) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	return nil
}

// Stopped reports whether Stop has been called.
func (s *Scripted) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

var _ Facade = (*Scripted)(nil)
