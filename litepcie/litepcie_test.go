package litepcie

import (
	"errors"
	"testing"

	"periph.io/x/conn/v3/physic"
)

// regWrite records one CSR write for assertions.
type regWrite struct {
	addr  uint32
	value uint32
}

// regmap is an in-memory RegIO fake: reads come from the map, writes are
// recorded in order and reflected back into the map.
type regmap struct {
	regs   map[uint32]uint32
	writes []regWrite
}

func newRegmap() *regmap {
	return &regmap{regs: map[uint32]uint32{}}
}

func (m *regmap) ReadL(addr uint32) uint32 {
	return m.regs[addr]
}

func (m *regmap) WriteL(addr, value uint32) {
	m.regs[addr] = value
	m.writes = append(m.writes, regWrite{addr, value})
}

func (m *regmap) lastWrite(t *testing.T, addr uint32) uint32 {
	t.Helper()
	for i := len(m.writes) - 1; i >= 0; i-- {
		if m.writes[i].addr == addr {
			return m.writes[i].value
		}
	}
	t.Fatalf("no write to CSR %#x recorded", addr)
	return 0
}

func TestSPIWriteEncoding(t *testing.T) {
	m := newRegmap()
	m.regs[CSRSPIStatus] = spiDoneBit
	s := NewSPI(m)

	if err := s.Write(0x3f4, 0x0b); err != nil {
		t.Fatalf("SPI write: %v", err)
	}

	// Instruction word has the write bit set, data byte in the low byte.
	if got, want := m.lastWrite(t, CSRSPIMOSI), uint32(0x83f4)<<8|0x0b; got != want {
		t.Errorf("MOSI word = %#x, want %#x", got, want)
	}
	if got, want := m.lastWrite(t, CSRSPIControl), uint32(24<<spiLengthShift|spiStartBit); got != want {
		t.Errorf("control word = %#x, want %#x", got, want)
	}
}

func TestSPIReadEncoding(t *testing.T) {
	m := newRegmap()
	m.regs[CSRSPIStatus] = spiDoneBit
	m.regs[CSRSPIMISO] = 0xa5
	s := NewSPI(m)

	val, err := s.Read(0x037)
	if err != nil {
		t.Fatalf("SPI read: %v", err)
	}
	if val != 0xa5 {
		t.Errorf("read value = %#x, want 0xa5", val)
	}
	// Read instruction word must have the write bit clear.
	if got, want := m.lastWrite(t, CSRSPIMOSI), uint32(0x037)<<8; got != want {
		t.Errorf("MOSI word = %#x, want %#x", got, want)
	}
}

func TestSPITxShapes(t *testing.T) {
	m := newRegmap()
	m.regs[CSRSPIStatus] = spiDoneBit
	m.regs[CSRSPIMISO] = 0x0a
	s := NewSPI(m)

	// 2-byte write / 1-byte read is a register read.
	r := make([]byte, 1)
	if err := s.Tx([]byte{0x00, 0x37}, r); err != nil {
		t.Fatalf("read-shape Tx: %v", err)
	}
	if r[0] != 0x0a {
		t.Errorf("read byte = %#x, want 0x0a", r[0])
	}

	// 3-byte write / no read is a register write.
	if err := s.Tx([]byte{0x00, 0x06, 0x5a}, nil); err != nil {
		t.Fatalf("write-shape Tx: %v", err)
	}
	if got, want := m.lastWrite(t, CSRSPIMOSI), uint32(0x8006)<<8|0x5a; got != want {
		t.Errorf("MOSI word = %#x, want %#x", got, want)
	}

	// Anything else is an unsupported transfer.
	for _, tc := range []struct {
		nw, nr int
	}{{1, 0}, {2, 0}, {3, 1}, {2, 2}, {0, 1}} {
		w := make([]byte, tc.nw)
		r := make([]byte, tc.nr)
		if err := s.Tx(w, r); !errors.Is(err, ErrUnsupportedTransfer) {
			t.Errorf("Tx(%d,%d) err = %v, want ErrUnsupportedTransfer", tc.nw, tc.nr, err)
		}
	}
}

func TestI2CTxFraming(t *testing.T) {
	m := newRegmap()
	// CSRI2CR reads back 0: SDA held low, so every ack slot succeeds.
	b := NewI2C(m)
	if err := b.SetSpeed(400 * physic.KiloHertz); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}

	if err := b.Tx(0x60, []byte{0x03, 0xff}, nil); err != nil {
		t.Fatalf("Tx: %v", err)
	}

	frames := decodeI2CFrames(m.writes)
	want := []uint8{0x60 << 1, 0x03, 0xff}
	if len(frames) != len(want) {
		t.Fatalf("decoded %d frames (%#x), want %d", len(frames), frames, len(want))
	}
	for i := range want {
		if frames[i] != want[i] {
			t.Errorf("frame %d = %#x, want %#x", i, frames[i], want[i])
		}
	}
}

func TestI2CRejectsBadInput(t *testing.T) {
	b := NewI2C(newRegmap())
	if err := b.Tx(0x90, []byte{0}, nil); err == nil {
		t.Error("expected error for 8-bit address")
	}
	if err := b.SetSpeed(physic.MegaHertz); err == nil {
		t.Error("expected error for >400kHz speed")
	}
}

// decodeI2CFrames replays recorded CSRI2CW writes and samples SDA on each
// rising SCL edge, regrouping the bit stream into 9-bit frames (8 data bits
// plus the ack slot, which is dropped). A one on the wire is a released
// line, i.e. SDAOE clear.
func decodeI2CFrames(writes []regWrite) []uint8 {
	var bits []bool
	prevSCL := false
	inFrame := false
	for _, w := range writes {
		if w.addr != CSRI2CW {
			continue
		}
		scl := w.value&i2cSCLBit != 0
		sdaDriven := w.value&i2cSDAOEBit != 0
		if scl && prevSCL && sdaDriven {
			// Start condition: SDA pulled low while SCL stays high.
			bits = bits[:0]
			inFrame = true
			prevSCL = scl
			continue
		}
		if scl && !prevSCL && inFrame {
			bits = append(bits, !sdaDriven)
		}
		prevSCL = scl
	}
	var frames []uint8
	for len(bits) >= 9 {
		var c uint8
		for i := 0; i < 8; i++ {
			if bits[i] {
				c |= 1 << (7 - i)
			}
		}
		frames = append(frames, c)
		bits = bits[9:]
	}
	return frames
}
