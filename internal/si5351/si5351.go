// Package si5351 programs the SI5351C clock generator that supplies the
// transceiver's 38.4MHz reference. The part is configured by replaying a
// fixed register table computed offline with the vendor's ClockBuilder
// tool; nothing here derives divider values at runtime.
package si5351

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
)

// I2CAddr is the generator's 7-bit bus address on the M2SDR board.
const I2CAddr uint16 = 0x60

// RegVal is one entry of a configuration table.
type RegVal struct {
	Reg uint8
	Val uint8
}

// Program disables the outputs, replays the configuration table, resets
// both PLLs, and re-enables the outputs. The table order matters: the part
// latches divider updates only on the PLL reset.
func Program(bus i2c.Bus, addr uint16, table []RegVal) error {
	// Gate all outputs and power down drivers while reconfiguring.
	if err := write(bus, addr, regOutputEnable, 0xff); err != nil {
		return fmt.Errorf("disable outputs: %w", err)
	}
	for clk := uint8(0); clk < 8; clk++ {
		if err := write(bus, addr, regClk0Control+clk, 0x80); err != nil {
			return fmt.Errorf("power down CLK%d: %w", clk, err)
		}
	}

	for _, rv := range table {
		if err := write(bus, addr, rv.Reg, rv.Val); err != nil {
			return fmt.Errorf("write config register %d: %w", rv.Reg, err)
		}
	}

	if err := write(bus, addr, regPLLReset, pllResetA|pllResetB); err != nil {
		return fmt.Errorf("reset PLLs: %w", err)
	}
	if err := write(bus, addr, regOutputEnable, 0x00); err != nil {
		return fmt.Errorf("enable outputs: %w", err)
	}
	return nil
}

func write(bus i2c.Bus, addr uint16, reg, val uint8) error {
	return bus.Tx(addr, []byte{reg, val}, nil)
}

const (
	regOutputEnable uint8 = 3
	regClk0Control  uint8 = 16
	regPLLReset     uint8 = 177

	pllResetA = 1 << 5
	pllResetB = 1 << 7
)
