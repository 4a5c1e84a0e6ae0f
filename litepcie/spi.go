package litepcie

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"
)

// ErrUnsupportedTransfer reports an SPI transaction shape the gateware's
// 24-bit AD9361 SPI master cannot express. This is a transport fault:
// callers are expected to treat it as fatal.
var ErrUnsupportedTransfer = errors.New("litepcie: unsupported SPI transfer shape")

// spiTimeout bounds the busy-wait on the SPI master's done flag. A stuck
// engine means the gateware clock is absent, which no retry will fix.
const spiTimeout = 100 * time.Millisecond

// SPI drives the gateware's AD9361 SPI master. Every transaction is 24 bits:
// a 16-bit instruction word (MSB set for writes) followed by one data byte.
//
// It satisfies periph.io's conn.Conn so code written against the ecosystem
// bus abstraction, including its test fakes, can drive it. Only the two
// transaction shapes the hardware supports are accepted by Tx: a 2-byte
// write with a 1-byte read (register read) and a 3-byte write with no read
// (register write).
type SPI struct {
	regs RegIO
	freq physic.Frequency
}

var _ conn.Conn = (*SPI)(nil)

// NewSPI returns an SPI master over the given register transport.
func NewSPI(regs RegIO) *SPI {
	return &SPI{regs: regs, freq: 10 * physic.MegaHertz}
}

// Init configures the chip-select mode. Manual mode holds CS asserted
// between the instruction and data phases, which the AD9361 requires.
func (s *SPI) Init(manualCS bool) {
	if manualCS {
		s.regs.WriteL(CSRSPICS, 1)
	} else {
		s.regs.WriteL(CSRSPICS, 0)
	}
}

func (s *SPI) String() string { return "m2sdr-ad9361-spi" }

// Duplex reports half-duplex: the AD9361 data byte is clocked strictly
// after the instruction word.
func (s *SPI) Duplex() conn.Duplex { return conn.Half }

// Tx performs one register transaction using the byte-level shapes of the
// original transport boundary. Any other shape is ErrUnsupportedTransfer.
func (s *SPI) Tx(w, r []byte) error {
	switch {
	case len(w) == 2 && len(r) == 1:
		reg := uint16(w[0])<<8 | uint16(w[1])
		val, err := s.Read(reg)
		if err != nil {
			return err
		}
		r[0] = val
		return nil
	case len(w) == 3 && len(r) == 0:
		reg := uint16(w[0])<<8 | uint16(w[1])
		return s.Write(reg, w[2])
	default:
		return fmt.Errorf("%w: n_tx=%d n_rx=%d", ErrUnsupportedTransfer, len(w), len(r))
	}
}

// Write writes one AD9361 register.
func (s *SPI) Write(reg uint16, val uint8) error {
	s.regs.WriteL(CSRSPIMOSI, (uint32(reg)|0x8000)<<8|uint32(val))
	return s.run()
}

// Read reads one AD9361 register.
func (s *SPI) Read(reg uint16) (uint8, error) {
	s.regs.WriteL(CSRSPIMOSI, uint32(reg&0x7fff)<<8)
	if err := s.run(); err != nil {
		return 0, err
	}
	return uint8(s.regs.ReadL(CSRSPIMISO) & 0xff), nil
}

func (s *SPI) run() error {
	s.regs.WriteL(CSRSPIControl, 24<<spiLengthShift|spiStartBit)
	deadline := time.Now().Add(spiTimeout)
	for s.regs.ReadL(CSRSPIStatus)&spiDoneBit == 0 {
		if time.Now().After(deadline) {
			return errors.New("litepcie: SPI transaction timed out")
		}
	}
	return nil
}
