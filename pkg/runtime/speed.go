package runtime

import "time"

// SpeedProfile controls the real-time pacing of the emulator tick loop. It
// is mutated in place by the foreground key handler and read by the same
// goroutine's tick loop; no other context touches it.
type SpeedProfile struct {
	FramesPerTick int
	TickInterval  time.Duration
}

// NormalSpeed runs at roughly 60 frames per second.
func NormalSpeed() SpeedProfile {
	return SpeedProfile{FramesPerTick: 1, TickInterval: time.Second / 60}
}

// FastSpeed advances five frames per tick at the same wall-clock rate,
// roughly 300 frames per second.
func FastSpeed() SpeedProfile {
	return SpeedProfile{FramesPerTick: 5, TickInterval: time.Second / 60}
}
