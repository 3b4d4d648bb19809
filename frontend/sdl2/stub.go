//go:build !sdl2

package sdl2

import (
	"fmt"

	"github.com/dmgo-emu/dmgo/frontend"
)

// Backend stubs out the SDL2 frontend for builds without the sdl2 tag (and
// the SDL2 development libraries it requires).
type Backend struct{}

func New() *Backend { return &Backend{} }

func (s *Backend) Init(cfg frontend.Config) error {
	return fmt.Errorf("sdl2 backend not available - build with -tags sdl2")
}

func (s *Backend) Update(frame frontend.Framebuffer) ([]frontend.InputEvent, error) {
	return nil, fmt.Errorf("sdl2 backend not available")
}

func (s *Backend) Cleanup() error { return nil }
