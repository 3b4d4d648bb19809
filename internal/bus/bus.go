// Package bus implements the single address-decode-and-dispatch point for
// the 16-bit memory map.
package bus

import (
	"github.com/dmgo-emu/dmgo/internal/addr"
	"github.com/dmgo-emu/dmgo/internal/cartridge"
	"github.com/dmgo-emu/dmgo/internal/ioregs"
)

// VideoMemory is the subset of the Ppu the bus forwards VRAM/OAM accesses
// to; the Ppu retains exclusive ownership of both rather than exposing
// its backing arrays for direct sharing.
type VideoMemory interface {
	ReadVRAM(offset uint16) byte
	WriteVRAM(offset uint16, v byte)
	ReadOAM(offset uint16) byte
	WriteOAM(offset uint16, v byte)
}

// AudioRegs is the Apu's own NR10-NR52/wave-RAM register file; the Apu
// needs write-edge visibility (e.g. channel-trigger bit 7) that a passive
// byte array can't give it, so it owns this range directly instead of
// going through IoRegisters.
type AudioRegs interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// Bus dispatches every CPU-visible read/write to the owning subsystem.
type Bus struct {
	cart *cartridge.Cartridge
	ppu  VideoMemory
	apu  AudioRegs
	io   *ioregs.IoRegisters

	wram [0x2000]byte
	hram [0x7F]byte

	dmaCounter    int
	dmaSourcePage byte
}

// New wires a bus to its collaborators. cart may be nil until Load.
func New(ppu VideoMemory, apu AudioRegs, io *ioregs.IoRegisters) *Bus {
	return &Bus{ppu: ppu, apu: apu, io: io}
}

// SetCartridge installs the currently loaded cartridge, replacing any
// prior one.
func (b *Bus) SetCartridge(cart *cartridge.Cartridge) {
	b.cart = cart
}

// Reset clears WRAM/HRAM and any in-flight DMA.
func (b *Bus) Reset() {
	b.wram = [0x2000]byte{}
	b.hram = [0x7F]byte{}
	b.dmaCounter = 0
	b.dmaSourcePage = 0
}

func (b *Bus) Read(a uint16) byte {
	switch {
	case a <= addr.ROMBankNEnd:
		return b.cartRead(a)
	case a >= addr.VRAMStart && a <= addr.VRAMEnd:
		return b.ppu.ReadVRAM(a - addr.VRAMStart)
	case a >= addr.ExtRAMStart && a <= addr.ExtRAMEnd:
		return b.cartRead(a)
	case a >= addr.WRAMStart && a <= addr.WRAMEnd:
		return b.wram[a-addr.WRAMStart]
	case a >= addr.EchoStart && a <= addr.EchoEnd:
		return b.wram[a-addr.EchoStart]
	case a >= addr.OAMStart && a <= addr.OAMEnd:
		return b.ppu.ReadOAM(a - addr.OAMStart)
	case a >= addr.ProhibitedStart && a <= addr.ProhibitedEnd:
		return 0xFF
	case a >= addr.HRAMStart && a <= addr.HRAMEnd:
		return b.hram[a-addr.HRAMStart]
	case a >= addr.NR10 && a <= addr.WaveRAMEnd:
		return b.apu.Read(a)
	default: // IO registers and IE
		return b.io.Read(a)
	}
}

func (b *Bus) Write(a uint16, v byte) {
	switch {
	case a <= addr.ROMBankNEnd:
		b.cartWrite(a, v)
	case a >= addr.VRAMStart && a <= addr.VRAMEnd:
		b.ppu.WriteVRAM(a-addr.VRAMStart, v)
	case a >= addr.ExtRAMStart && a <= addr.ExtRAMEnd:
		b.cartWrite(a, v)
	case a >= addr.WRAMStart && a <= addr.WRAMEnd:
		b.wram[a-addr.WRAMStart] = v
	case a >= addr.EchoStart && a <= addr.EchoEnd:
		b.wram[a-addr.EchoStart] = v
	case a >= addr.OAMStart && a <= addr.OAMEnd:
		b.ppu.WriteOAM(a-addr.OAMStart, v)
	case a >= addr.ProhibitedStart && a <= addr.ProhibitedEnd:
		// writes dropped.
	case a >= addr.HRAMStart && a <= addr.HRAMEnd:
		b.hram[a-addr.HRAMStart] = v
	case a >= addr.NR10 && a <= addr.WaveRAMEnd:
		b.apu.Write(a, v)
	case a == addr.DMA:
		b.io.Write(a, v)
		b.dmaSourcePage = v
		b.dmaCounter = 160
	default:
		b.io.Write(a, v)
	}
}

func (b *Bus) cartRead(a uint16) byte {
	if b.cart == nil {
		return 0xFF
	}
	return b.cart.Read(a)
}

func (b *Bus) cartWrite(a uint16, v byte) {
	if b.cart == nil {
		return
	}
	b.cart.Write(a, v)
}

// DMAActive reports whether an OAM DMA transfer is in progress.
func (b *Bus) DMAActive() bool { return b.dmaCounter > 0 }

// StepDMA copies one byte of the in-flight OAM DMA transfer.
func (b *Bus) StepDMA() {
	if b.dmaCounter <= 0 {
		return
	}
	idx := 160 - b.dmaCounter
	src := uint16(b.dmaSourcePage)<<8 + uint16(idx)
	b.ppu.WriteOAM(uint16(idx), b.Read(src))
	b.dmaCounter--
}
