package litepcie

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/physic"
)

// I2C is the bit-banged I2C master the gateware wires to the SI5351 clock
// generator. The fabric only exposes raw SCL/SDA drive and SDA readback
// bits; start/stop framing and acknowledge handling happen here.
//
// It satisfies periph.io's i2c.Bus so the clock-generator code can be
// exercised against ecosystem playback fakes in tests.
type I2C struct {
	regs RegIO
	half time.Duration // half bit period
}

var _ i2c.Bus = (*I2C)(nil)

// NewI2C returns the I2C master over the given register transport.
func NewI2C(regs RegIO) *I2C {
	b := &I2C{regs: regs}
	b.SetSpeed(100 * physic.KiloHertz)
	return b
}

func (b *I2C) String() string { return "m2sdr-si5351-i2c" }

// SetSpeed adjusts the bus clock. The bit-bang loop cannot go much beyond
// 400kHz through PCIe round trips; higher requests are rejected.
func (b *I2C) SetSpeed(f physic.Frequency) error {
	if f <= 0 || f > 400*physic.KiloHertz {
		return fmt.Errorf("litepcie: unsupported I2C speed %s", f)
	}
	b.half = time.Second / time.Duration(2*int64(f/physic.Hertz))
	return nil
}

// Tx writes w then reads len(r) bytes from the 7-bit device address, with a
// repeated start between the phases when both are present.
func (b *I2C) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7f {
		return fmt.Errorf("litepcie: invalid I2C address %#x", addr)
	}
	if len(w) > 0 {
		b.start()
		if !b.writeByte(uint8(addr << 1)) {
			b.stop()
			return fmt.Errorf("litepcie: I2C device %#x did not ack address (write)", addr)
		}
		for i, c := range w {
			if !b.writeByte(c) {
				b.stop()
				return fmt.Errorf("litepcie: I2C device %#x nacked byte %d", addr, i)
			}
		}
	}
	if len(r) > 0 {
		b.start()
		if !b.writeByte(uint8(addr<<1) | 1) {
			b.stop()
			return errors.New("litepcie: I2C device did not ack address (read)")
		}
		for i := range r {
			r[i] = b.readByte(i != len(r)-1)
		}
	}
	b.stop()
	return nil
}

// Low-level line control. The gateware drives SDA through an output-enable
// bit; releasing SDAOE lets the external pull-up raise the line.

func (b *I2C) drive(scl bool, sdaOE bool, sda bool) {
	var v uint32
	if scl {
		v |= i2cSCLBit
	}
	if sdaOE {
		v |= i2cSDAOEBit
	}
	if sda {
		v |= i2cSDAWBit
	}
	b.regs.WriteL(CSRI2CW, v)
	time.Sleep(b.half)
}

func (b *I2C) sdaIn() bool {
	return b.regs.ReadL(CSRI2CR)&i2cSDARBit != 0
}

func (b *I2C) start() {
	b.drive(true, false, false) // both released
	b.drive(true, true, false)  // SDA low while SCL high
	b.drive(false, true, false)
}

func (b *I2C) stop() {
	b.drive(false, true, false)
	b.drive(true, true, false)
	b.drive(true, false, false) // SDA released while SCL high
}

func (b *I2C) writeBit(bit bool) {
	// SDA is driven low by asserting OE; a one is the released line.
	b.drive(false, !bit, false)
	b.drive(true, !bit, false)
	b.drive(false, !bit, false)
}

func (b *I2C) readBit() bool {
	b.drive(false, false, false)
	b.drive(true, false, false)
	bit := b.sdaIn()
	b.drive(false, false, false)
	return bit
}

// writeByte shifts out one byte MSB first and returns true if the slave
// acknowledged.
func (b *I2C) writeByte(c uint8) bool {
	for i := 7; i >= 0; i-- {
		b.writeBit(c&(1<<i) != 0)
	}
	return !b.readBit() // ack is SDA pulled low
}

func (b *I2C) readByte(ack bool) uint8 {
	var c uint8
	for i := 7; i >= 0; i-- {
		if b.readBit() {
			c |= 1 << i
		}
	}
	b.writeBit(!ack)
	return c
}
