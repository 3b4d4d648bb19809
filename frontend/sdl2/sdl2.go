//go:build sdl2

// Package sdl2 renders frames to an SDL2 window. Building it requires SDL2
// development libraries; default builds use the stub in stub.go instead
// (see the sdl2 build tag).
package sdl2

import (
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/dmgo-emu/dmgo/frontend"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

const (
	windowWidth  = 160
	windowHeight = 144
	pixelScale   = 4
)

var grayscale = [4]byte{0xFF, 0xAA, 0x55, 0x00}

var keyMapping = map[sdl.Keycode]ioregs.Button{
	sdl.K_RETURN: ioregs.ButtonStart,
	sdl.K_TAB:    ioregs.ButtonSelect,
	sdl.K_z:      ioregs.ButtonA,
	sdl.K_x:      ioregs.ButtonB,
	sdl.K_UP:     ioregs.ButtonUp,
	sdl.K_DOWN:   ioregs.ButtonDown,
	sdl.K_LEFT:   ioregs.ButtonLeft,
	sdl.K_RIGHT:  ioregs.ButtonRight,
}

// Backend implements frontend.Backend using SDL2 window/renderer/texture.
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	pixelBuffer []byte
}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(cfg frontend.Config) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("sdl2: %w", err)
	}

	scale := cfg.Scale
	if scale <= 0 {
		scale = pixelScale
	}

	window, err := sdl.CreateWindow(cfg.Title, sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		windowWidth*int32(scale), windowHeight*int32(scale), sdl.WINDOW_SHOWN)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("sdl2: creating window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: creating renderer: %w", err)
	}
	s.renderer = renderer

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGBA8888, sdl.TEXTUREACCESS_STREAMING, windowWidth, windowHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("sdl2: creating texture: %w", err)
	}
	s.texture = texture
	s.pixelBuffer = make([]byte, windowWidth*windowHeight*4)

	slog.Info("sdl2 backend initialized", "scale", scale)
	return nil
}

func (s *Backend) Update(frame frontend.Framebuffer) ([]frontend.InputEvent, error) {
	var events []frontend.InputEvent

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			return events, fmt.Errorf("sdl2: quit requested")
		case *sdl.KeyboardEvent:
			if btn, ok := keyMapping[e.Keysym.Sym]; ok {
				events = append(events, frontend.InputEvent{Button: btn, Pressed: e.Type == sdl.KEYDOWN})
			}
		}
	}

	s.renderFrame(frame)
	return events, nil
}

func (s *Backend) renderFrame(frame frontend.Framebuffer) {
	for i, colorIdx := range frame {
		shade := grayscale[colorIdx&0x03]
		o := i * 4
		s.pixelBuffer[o], s.pixelBuffer[o+1], s.pixelBuffer[o+2], s.pixelBuffer[o+3] = shade, shade, shade, 0xFF
	}

	s.texture.Update(nil, s.pixelBuffer, windowWidth*4)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
}

func (s *Backend) Cleanup() error {
	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}
