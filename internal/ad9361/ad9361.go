// Package ad9361 is a register-level control facade for the AD9361 RF
// transceiver as wired on the M2SDR board. It covers the operations the
// bring-up sequence needs: initialization, sample rate, bandwidth, LO
// frequency, FIR loading, gain/attenuation, and the BIST blocks used by the
// interface-timing calibration. The chip's internal tuning state machines
// (PLL lock, filter tune, gain tables) run on-chip; this package only
// programs them and does not model them.
package ad9361

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3"
)

// InitParams are the hardware-strap parameters of the board. On M2SDR only
// the reset pin is wired; sync and cal-switch GPIOs are absent.
type InitParams struct {
	ResetGPIO   int
	SyncGPIO    int // -1: not wired
	CalSw1GPIO  int // -1: not wired
	CalSw2GPIO  int // -1: not wired
	RefClkHz    int64
	TwoRxTwoTx  bool
	ResetSettle time.Duration // wait after soft reset, resetSettle when zero
}

const resetSettle = time.Millisecond

// Phy drives one AD9361 over a periph.io conn.Conn carrying the 24-bit SPI
// transactions of the transport boundary (2-byte instruction + 1-byte
// data).
type Phy struct {
	bus conn.Conn
}

// NewPhy returns a facade over the given SPI connection.
func NewPhy(bus conn.Conn) *Phy {
	return &Phy{bus: bus}
}

// WriteReg writes one raw SPI register. Exposed for the fixed register
// recipes the bring-up applies outside the high-level operations.
func (p *Phy) WriteReg(reg uint16, val uint8) error {
	return p.bus.Tx([]byte{byte(reg >> 8), byte(reg), val}, nil)
}

// ReadReg reads one raw SPI register.
func (p *Phy) ReadReg(reg uint16) (uint8, error) {
	r := make([]byte, 1)
	if err := p.bus.Tx([]byte{byte(reg >> 8), byte(reg)}, r); err != nil {
		return 0, err
	}
	return r[0], nil
}

// Init soft-resets the chip, verifies its identity, and enables the
// reference clock path. It must run before any other operation.
func (p *Phy) Init(params InitParams) error {
	settle := params.ResetSettle
	if settle == 0 {
		settle = resetSettle
	}

	if err := p.WriteReg(regSPIConf, softResetBit); err != nil {
		return fmt.Errorf("soft reset: %w", err)
	}
	time.Sleep(settle)

	id, err := p.ReadReg(regProductID)
	if err != nil {
		return fmt.Errorf("read product ID: %w", err)
	}
	if id&productIDMask != productIDAD9361 {
		return fmt.Errorf("unexpected product ID %#x (masked %#x)", id, id&productIDMask)
	}

	// Reference clock buffer on, BBPLL enabled.
	if err := p.WriteReg(regClockEnable, 0x17); err != nil {
		return fmt.Errorf("enable clocks: %w", err)
	}
	mode := uint8(0x00)
	if params.TwoRxTwoTx {
		mode = 0x01
	}
	if err := p.WriteReg(regInputSelect, mode); err != nil {
		return fmt.Errorf("select channel mode: %w", err)
	}
	return nil
}

// SetSamplingFreq programs the BBPLL and the divider chains of both
// directions for the given sample rate. The chip runs TX and RX from the
// same BBPLL, so rate changes always apply to both paths.
func (p *Phy) SetSamplingFreq(hz uint32, refClkHz int64) error {
	if hz == 0 || refClkHz <= 0 {
		return fmt.Errorf("invalid sampling freq %d / refclk %d", hz, refClkHz)
	}

	// Raise the BBPLL into its 715..1430MHz band with a power-of-two
	// divider chain, then split the multiplier into integer and
	// fractional words against the reference.
	bbpll := uint64(hz)
	div := 0
	for bbpll < 715_000_000 && div < 6 {
		bbpll <<= 1
		div++
	}
	integer := bbpll / uint64(refClkHz)
	frac := (bbpll % uint64(refClkHz)) * bbpllModulus / uint64(refClkHz)

	writes := []struct {
		reg uint16
		val uint8
	}{
		{regBBPLLInteger, uint8(integer)},
		{regBBPLLFracByte2, uint8(frac >> 16)},
		{regBBPLLFracByte1, uint8(frac >> 8)},
		{regBBPLLFracByte0, uint8(frac)},
		// Divider chain exponent feeds both path control registers.
		{regTxEnableFilterCtrl, uint8(div) << 4},
		{regRxEnableFilterCtrl, uint8(div) << 4},
	}
	for _, w := range writes {
		if err := p.WriteReg(w.reg, w.val); err != nil {
			return fmt.Errorf("program BBPLL: %w", err)
		}
	}
	return nil
}

// SetRFBandwidth tunes the analog baseband filters of one direction to the
// given RF bandwidth. The tune itself runs on-chip.
func (p *Phy) SetRFBandwidth(path Path, hz int64) error {
	if hz <= 0 {
		return fmt.Errorf("invalid bandwidth %d", hz)
	}
	// The filter corner sits at half the complex bandwidth, in 100kHz
	// steps for the tune divider.
	corner := uint16(hz / 2 / 100_000)
	var reg uint16
	if path == PathTX {
		reg = regTxBBFR1
	} else {
		reg = regRxBBFTuneDivide
	}
	if err := p.WriteReg(reg, uint8(corner)); err != nil {
		return fmt.Errorf("set %s BBF corner: %w", path, err)
	}
	if path == PathRX {
		if err := p.WriteReg(regRxBBFTuneDivideFrac, uint8(corner>>8)); err != nil {
			return fmt.Errorf("set RX BBF corner MSB: %w", err)
		}
	}
	if err := p.WriteReg(regCalCtrl, bbfTuneStartBit); err != nil {
		return fmt.Errorf("start BBF tune: %w", err)
	}
	return nil
}

// SetLOFreq programs one direction's RF synthesizer to the given LO
// frequency and arms its VCO calibration.
func (p *Phy) SetLOFreq(path Path, hz int64, refClkHz int64) error {
	if hz <= 0 || refClkHz <= 0 {
		return fmt.Errorf("invalid LO freq %d / refclk %d", hz, refClkHz)
	}

	// N divider as a 23-bit fractional word against the reference.
	n := (uint64(hz) << 23) / uint64(refClkHz)
	integer := n >> 23
	frac := n & (1<<23 - 1)

	fracRegs := [3]uint16{regRxSynthFracByte0, regRxSynthFracByte1, regRxSynthFracByte2}
	intRegs := [2]uint16{regRxSynthIntByte0, regRxSynthIntByte1}
	calReg := regRxVCOCal
	if path == PathTX {
		fracRegs = [3]uint16{regTxSynthFracByte0, regTxSynthFracByte1, regTxSynthFracByte2}
		intRegs = [2]uint16{regTxSynthIntByte0, regTxSynthIntByte1}
		calReg = regTxVCOCal
	}

	for i, reg := range fracRegs {
		if err := p.WriteReg(reg, uint8(frac>>(8*i))); err != nil {
			return fmt.Errorf("program %s synth frac: %w", path, err)
		}
	}
	if err := p.WriteReg(intRegs[0], uint8(integer)); err != nil {
		return fmt.Errorf("program %s synth int: %w", path, err)
	}
	if err := p.WriteReg(intRegs[1], uint8(integer>>8)|vcoCalStartBit); err != nil {
		return fmt.Errorf("program %s synth int MSB: %w", path, err)
	}
	if err := p.WriteReg(calReg, vcoCalStartBit); err != nil {
		return fmt.Errorf("arm %s VCO cal: %w", path, err)
	}
	return nil
}

// SetAtten programs a TX channel's attenuator in milli-dB. The hardware
// step is 250 mdB; values are clamped to the 0..89750 range of the
// attenuator.
func (p *Phy) SetAtten(ch int, milliDB int64) error {
	if milliDB < 0 {
		milliDB = 0
	}
	if milliDB > 89750 {
		milliDB = 89750
	}
	steps := uint16(milliDB / 250)

	lsb, msb := regTx1AttenLSB, regTx1AttenMSB
	switch ch {
	case 1:
	case 2:
		lsb, msb = regTx2AttenLSB, regTx2AttenMSB
	default:
		return fmt.Errorf("invalid TX channel %d", ch)
	}
	if err := p.WriteReg(lsb, uint8(steps)); err != nil {
		return fmt.Errorf("set TX%d atten LSB: %w", ch, err)
	}
	if err := p.WriteReg(msb, uint8(steps>>8)&0x01); err != nil {
		return fmt.Errorf("set TX%d atten MSB: %w", ch, err)
	}
	return nil
}

// SetRXGain sets one RX channel's manual gain index in dB.
func (p *Phy) SetRXGain(ch int, gainDB int64) error {
	if gainDB < 0 {
		gainDB = 0
	}
	if gainDB > 76 {
		gainDB = 76
	}
	var reg uint16
	switch ch {
	case 1:
		reg = regRx1ManualGainIndex
	case 2:
		reg = regRx2ManualGainIndex
	default:
		return fmt.Errorf("invalid RX channel %d", ch)
	}
	if err := p.WriteReg(reg, uint8(gainDB)&0x7f); err != nil {
		return fmt.Errorf("set RX%d gain: %w", ch, err)
	}
	return nil
}
