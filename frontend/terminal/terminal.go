// Package terminal renders frames to a tcell screen using block characters
// as grayscale shades.
package terminal

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/dmgo-emu/dmgo/frontend"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

const (
	scaleX = 2 // terminal cells are taller than wide; double the horizontal scale
	scaleY = 1
)

var shadeChars = []rune{'█', '▓', '▒', '░'}

// keyMap gives the default letter bindings: WASD for directions (arrow keys
// also work, see specialKeyMap), z/x for A/B.
var keyMap = map[rune]ioregs.Button{
	'z': ioregs.ButtonA,
	'x': ioregs.ButtonB,
	'w': ioregs.ButtonUp,
	's': ioregs.ButtonDown,
	'a': ioregs.ButtonLeft,
	'd': ioregs.ButtonRight,
}

var specialKeyMap = map[tcell.Key]ioregs.Button{
	tcell.KeyUp:    ioregs.ButtonUp,
	tcell.KeyDown:  ioregs.ButtonDown,
	tcell.KeyLeft:  ioregs.ButtonLeft,
	tcell.KeyRight: ioregs.ButtonRight,
	tcell.KeyEnter: ioregs.ButtonStart,
	tcell.KeyTab:   ioregs.ButtonSelect,
}

// Backend implements frontend.Backend over a tcell terminal screen.
type Backend struct {
	screen tcell.Screen
	events chan frontend.InputEvent
	quit   chan struct{}
}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Init(cfg frontend.Config) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("terminal: %w", err)
	}

	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	b.screen = screen
	b.events = make(chan frontend.InputEvent, 64)
	b.quit = make(chan struct{})

	go b.pollInput()

	return nil
}

func (b *Backend) pollInput() {
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			b.handleKey(ev)
		case *tcell.EventResize:
			b.screen.Sync()
		}
	}
}

func (b *Backend) handleKey(ev *tcell.EventKey) {
	if ev.Key() == tcell.KeyEscape {
		close(b.quit)
		return
	}

	if btn, ok := specialKeyMap[ev.Key()]; ok {
		b.events <- frontend.InputEvent{Button: btn, Pressed: true}
		return
	}
	if btn, ok := keyMap[ev.Rune()]; ok {
		b.events <- frontend.InputEvent{Button: btn, Pressed: true}
	}
}

func (b *Backend) Update(frame frontend.Framebuffer) ([]frontend.InputEvent, error) {
	select {
	case <-b.quit:
		return nil, fmt.Errorf("terminal: quit requested")
	default:
	}

	b.render(frame)

	var drained []frontend.InputEvent
	for {
		select {
		case ev := <-b.events:
			drained = append(drained, ev)
		default:
			return drained, nil
		}
	}
}

func (b *Backend) render(frame frontend.Framebuffer) {
	b.screen.Clear()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)

	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			shade := shadeChars[frame[y*160+x]&0x03]
			for sx := 0; sx < scaleX; sx++ {
				b.screen.SetContent(x*scaleX+sx, y*scaleY, shade, nil, style)
			}
		}
	}
	b.screen.Show()
}

func (b *Backend) Cleanup() error {
	if b.screen != nil {
		b.screen.Fini()
	}
	return nil
}

// FrameInterval is the nominal DMG refresh period, for a frontend's own
// time.Ticker-based frame limiter.
const FrameInterval = time.Second / 60
