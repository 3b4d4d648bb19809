// Package frontend defines the contract every presentation layer (terminal,
// SDL2, headless batch runner) implements around a running Engine.
package frontend

import "github.com/dmgo-emu/dmgo/internal/ioregs"

// InputEvent is a single button transition a Backend observed this Update.
type InputEvent struct {
	Button  ioregs.Button
	Pressed bool
}

// Config configures a Backend before its first Update.
type Config struct {
	Title       string
	Scale       int
	TargetFPS   int
	TestPattern bool
}

// Framebuffer is the 160x144 2-bit-color-index buffer a Backend renders;
// matches ppu.PPU.Framebuffer's return type without importing internal/ppu
// from every backend package.
type Framebuffer = *[160 * 144]byte

// Backend is a complete presentation surface: it renders a frame, collects
// input, and is torn down once at shutdown. Exactly one Backend runs a
// given Engine at a time; there is no shared mutable state between them.
type Backend interface {
	Init(cfg Config) error

	// Update renders frame and returns the input transitions observed
	// since the previous call.
	Update(frame Framebuffer) ([]InputEvent, error)

	Cleanup() error
}
