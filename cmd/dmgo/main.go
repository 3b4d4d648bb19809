// Command dmgo runs the DMG emulator core against a terminal, SDL2, or
// headless presentation backend.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"log/slog"

	"github.com/urfave/cli"

	"github.com/dmgo-emu/dmgo/frontend"
	"github.com/dmgo-emu/dmgo/frontend/headless"
	"github.com/dmgo-emu/dmgo/frontend/sdl2"
	"github.com/dmgo-emu/dmgo/frontend/terminal"
	"github.com/dmgo-emu/dmgo/internal/engine"
)

const frameInterval = time.Second / 60

func main() {
	app := cli.NewApp()
	app.Name = "dmgo"
	app.Usage = "dmgo [options] <ROM file>"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "rom", Usage: "Path to the ROM file"},
		cli.BoolFlag{Name: "headless", Usage: "Run without a graphical interface"},
		cli.IntFlag{Name: "frames", Usage: "Frames to run in headless mode", Value: 0},
		cli.BoolFlag{Name: "sdl2", Usage: "Use the SDL2 backend instead of the terminal"},
		cli.IntFlag{Name: "snapshot-interval", Usage: "Save a frame snapshot every N frames in headless mode", Value: 0},
		cli.StringFlag{Name: "snapshot-dir", Usage: "Directory to save snapshots to"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgo exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	emu := engine.New(nil)
	if err := emu.Load(data); err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	backend, err := selectBackend(c, romPath)
	if err != nil {
		return err
	}

	cfg := frontend.Config{Title: "dmgo", Scale: 4, TargetFPS: 60}
	if err := backend.Init(cfg); err != nil {
		return err
	}
	defer backend.Cleanup()

	if c.Bool("headless") {
		frames := c.Int("frames")
		if frames <= 0 {
			return errors.New("headless mode requires --frames with a positive value")
		}
		return runHeadless(emu, backend, frames)
	}

	return runInteractive(emu, backend)
}

func selectBackend(c *cli.Context, romPath string) (frontend.Backend, error) {
	if c.Bool("headless") {
		snapshotInterval := c.Int("snapshot-interval")
		snapshotDir := c.String("snapshot-dir")
		if snapshotInterval > 0 && snapshotDir == "" {
			dir, err := os.MkdirTemp("", "dmgo-snapshots-*")
			if err != nil {
				return nil, fmt.Errorf("creating snapshot dir: %w", err)
			}
			snapshotDir = dir
		}

		romName := strings.TrimSuffix(filepath.Base(romPath), filepath.Ext(romPath))
		return headless.New(headless.SnapshotConfig{
			Enabled:  snapshotInterval > 0,
			Interval: snapshotInterval,
			Dir:      snapshotDir,
			ROMName:  romName,
		}), nil
	}

	if c.Bool("sdl2") {
		return sdl2.New(), nil
	}
	return terminal.New(), nil
}

func runHeadless(emu *engine.Engine, backend frontend.Backend, frames int) error {
	const runToFrameBudget = 1 << 22 // generous upper bound on machine cycles per frame

	for i := 0; i < frames; i++ {
		emu.RunToFrame(runToFrameBudget)
		if _, err := backend.Update(emu.Framebuffer()); err != nil {
			return err
		}
	}
	slog.Info("headless run completed", "frames", frames)
	return nil
}

func runInteractive(emu *engine.Engine, backend frontend.Backend) error {
	const runToFrameBudget = 1 << 22

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for range ticker.C {
		emu.RunToFrame(runToFrameBudget)

		events, err := backend.Update(emu.Framebuffer())
		if err != nil {
			return nil // quit requested
		}
		for _, ev := range events {
			if ev.Pressed {
				emu.ButtonDown(ev.Button)
			} else {
				emu.ButtonUp(ev.Button)
			}
		}
	}
	return nil
}
