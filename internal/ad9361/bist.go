package ad9361

import "fmt"

// Path selects the TX or RX side of the digital interface.
type Path int

const (
	PathRX Path = iota
	PathTX
)

func (p Path) String() string {
	if p == PathTX {
		return "TX"
	}
	return "RX"
}

// Injection selects where the BIST block injects its pattern. Injecting on
// the RX side drives the pattern toward the digital interface; injecting on
// the TX side drives it into the transmit chain.
type Injection int

const (
	InjRX Injection = iota
	InjTX
)

// SetClockDataDelays writes one path's clock and data delay taps. Both
// values are 4-bit delay-line selects; the clock tap occupies the high
// nibble of the register.
func (p *Phy) SetClockDataDelays(path Path, clk, dat int) error {
	if clk < 0 || clk > 15 || dat < 0 || dat > 15 {
		return fmt.Errorf("delay taps out of range: clk=%d dat=%d", clk, dat)
	}
	reg := regRxClockDataDelay
	if path == PathTX {
		reg = regTxClockDataDelay
	}
	if err := p.WriteReg(reg, uint8(clk)<<4|uint8(dat)); err != nil {
		return fmt.Errorf("set %s clock/data delays: %w", path, err)
	}
	return nil
}

// SetBISTLoopback enables or disables the on-chip RX->TX loopback path.
func (p *Phy) SetBISTLoopback(enable bool) error {
	var mode uint8
	if enable {
		mode = loopbackRXTX
	}
	if err := p.WriteReg(regBISTAndDataPortTest, mode); err != nil {
		return fmt.Errorf("set BIST loopback: %w", err)
	}
	return nil
}

// SetBISTTone injects a single tone on the given side. freqSel selects the
// tone frequency in Fs/32 steps (0..3), levelSel the level in -6dB steps
// (0..3), and channelMask masks channels out of the injection (0 = both).
func (p *Phy) SetBISTTone(inj Injection, freqSel, levelSel int, channelMask uint8) error {
	if freqSel < 0 || freqSel > 3 || levelSel < 0 || levelSel > 3 {
		return fmt.Errorf("tone selects out of range: freq=%d level=%d", freqSel, levelSel)
	}
	cfg := uint8(bistEnableBit)
	if inj == InjTX {
		cfg |= bistInjTXBit
	}
	cfg |= uint8(freqSel) << bistToneFreqLSB
	cfg |= uint8(levelSel) << bistToneLevelLSB
	if err := p.WriteReg(regBISTConfig, cfg); err != nil {
		return fmt.Errorf("enable BIST tone: %w", err)
	}
	if err := p.WriteReg(regObserveConfig, channelMask); err != nil {
		return fmt.Errorf("set BIST channel mask: %w", err)
	}
	return nil
}

// SetBISTPRBS enables the pseudo-random sequence generator on the given
// side. The chip has a single generator; exercising the opposite digital
// interface requires the loopback path instead of a second injection.
func (p *Phy) SetBISTPRBS(inj Injection) error {
	cfg := uint8(bistEnableBit | bistTonePRBSBit)
	if inj == InjTX {
		cfg |= bistInjTXBit
	}
	if err := p.WriteReg(regBISTConfig, cfg); err != nil {
		return fmt.Errorf("enable BIST PRBS: %w", err)
	}
	return nil
}
