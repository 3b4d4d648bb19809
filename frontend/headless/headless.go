// Package headless runs an Engine without any rendering surface, for batch
// processing and automated testing.
package headless

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmgo-emu/dmgo/frontend"
)

// SnapshotConfig controls periodic frame dumps to disk.
type SnapshotConfig struct {
	Enabled  bool
	Interval int
	Dir      string
	ROMName  string
}

// Backend implements frontend.Backend with no I/O beyond optional snapshots.
type Backend struct {
	cfg        frontend.Config
	snapshot   SnapshotConfig
	frameCount int
}

func New(snapshot SnapshotConfig) *Backend {
	return &Backend{snapshot: snapshot}
}

func (b *Backend) Init(cfg frontend.Config) error {
	b.cfg = cfg
	if b.snapshot.Enabled {
		if err := os.MkdirAll(b.snapshot.Dir, 0o755); err != nil {
			return fmt.Errorf("headless: creating snapshot dir: %w", err)
		}
	}
	return nil
}

func (b *Backend) Update(frame frontend.Framebuffer) ([]frontend.InputEvent, error) {
	b.frameCount++

	if b.snapshot.Enabled && b.frameCount%b.snapshot.Interval == 0 {
		path := filepath.Join(b.snapshot.Dir, fmt.Sprintf("%s_frame_%d.txt", b.snapshot.ROMName, b.frameCount))
		if err := writeSnapshot(frame, path); err != nil {
			slog.Error("headless: failed to save snapshot", "frame", b.frameCount, "error", err)
		}
	}

	return nil, nil
}

func (b *Backend) Cleanup() error { return nil }

// FrameCount reports how many frames Update has processed so far.
func (b *Backend) FrameCount() int { return b.frameCount }

var shades = []rune{'█', '▓', '▒', '░'}

func writeSnapshot(frame frontend.Framebuffer, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	for y := 0; y < 144; y++ {
		line := make([]rune, 160)
		for x := 0; x < 160; x++ {
			line[x] = shades[frame[y*160+x]&0x03]
		}
		if _, err := fmt.Fprintln(f, string(line)); err != nil {
			return err
		}
	}
	return nil
}
