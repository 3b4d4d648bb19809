// Package engine composes Bus, Cpu, Ppu, Apu, IoRegisters and Cartridge
// into the single stepping loop a frontend drives.
package engine

import (
	"log/slog"

	"github.com/dmgo-emu/dmgo/internal/apu"
	"github.com/dmgo-emu/dmgo/internal/bus"
	"github.com/dmgo-emu/dmgo/internal/cartridge"
	"github.com/dmgo-emu/dmgo/internal/cpu"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
	"github.com/dmgo-emu/dmgo/internal/ppu"
)

// Engine owns one complete DMG core. Every cartridge load replaces each
// subsystem with a freshly constructed one; subsystem instances are not
// kept across loads.
type Engine struct {
	bus *bus.Bus
	cpu *cpu.CPU
	ppu *ppu.PPU
	apu *apu.Apu
	io  *ioregs.IoRegisters

	cart   *cartridge.Cartridge
	logger *slog.Logger
}

// New wires a fresh, unloaded Engine. logger may be nil, in which case
// slog.Default() is used, matching cartridge.Load's convention.
func New(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	io := ioregs.New()
	p := ppu.New()
	a := apu.New()
	b := bus.New(p, a, io)
	c := cpu.New(b)

	return &Engine{bus: b, cpu: c, ppu: p, apu: a, io: io, logger: logger}
}

// Load parses and installs a cartridge image, resetting every subsystem to
// its power-up state first
func (e *Engine) Load(data []byte) error {
	cart, err := cartridge.Load(data, e.logger)
	if err != nil {
		return err
	}

	e.io = ioregs.New()
	e.ppu = ppu.New()
	e.apu = apu.New()
	e.bus = bus.New(e.ppu, e.apu, e.io)
	e.cpu = cpu.New(e.bus)

	e.cart = cart
	e.bus.SetCartridge(cart)

	e.logger.Info("cartridge loaded", "title", cart.Title)
	return nil
}

// Tick executes one Cpu step and every Ppu/Apu cycle it implies: one Cpu
// step, then Apu.Tick once per returned machine cycle, and Ppu.Tick four
// times per machine cycle. It reports whether the Ppu completed a frame
// during this call.
func (e *Engine) Tick() bool {
	machineCycles := e.cpu.Tick()

	frameReady := false
	for i := 0; i < machineCycles; i++ {
		e.io.Timer.Step(4)
		e.apu.Tick(e.io)

		for dot := 0; dot < 4; dot++ {
			if e.ppu.Tick(e.io) {
				frameReady = true
			}
		}
	}

	return frameReady
}

// RunToFrame ticks until a frame completes or budget machine-cycle-sized
// ticks have run, whichever comes first, guarding against a runaway loop
// when the core is stuck (e.g. no cartridge loaded)
// FrontEnd boundary.
func (e *Engine) RunToFrame(budget int) {
	for i := 0; i < budget; i++ {
		if e.Tick() {
			return
		}
	}
}

// Framebuffer returns the Ppu's current 160x144 2-bit-color-index buffer.
func (e *Engine) Framebuffer() *[ppu.ScreenWidth * ppu.ScreenHeight]byte {
	return e.ppu.Framebuffer()
}

// DrainAudio returns, and clears, the accumulated interleaved stereo
// samples produced since the last call.
func (e *Engine) DrainAudio() []float32 {
	return e.apu.DrainSamples()
}

// ButtonDown marks a button as pressed, surfacing a JOYPAD interrupt if the
// button's nibble is currently selected.
func (e *Engine) ButtonDown(b ioregs.Button) { e.io.Joypad.ButtonDown(b) }

// ButtonUp marks a button as released.
func (e *Engine) ButtonUp(b ioregs.Button) { e.io.Joypad.ButtonUp(b) }
