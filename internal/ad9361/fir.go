package ad9361

import "fmt"

// FIRConfig is one direction's programmable FIR filter: its coefficient
// set, the decimation/interpolation factor of the stage, and the digital
// gain applied at its output.
type FIRConfig struct {
	Path   Path
	Coefs  []int16
	Ratio  int // 1, 2 or 4
	GaindB int // -12..0 in 6dB steps
}

// DefaultTxFIR and DefaultRxFIR are the fixed filter tables the board
// ships with: 64-tap symmetric low-pass sets matched to the divider chain
// this bring-up programs. They are not user-tunable here.
var (
	DefaultTxFIR = FIRConfig{Path: PathTX, Coefs: defaultFIRCoefs[:], Ratio: 2, GaindB: -6}
	DefaultRxFIR = FIRConfig{Path: PathRX, Coefs: defaultFIRCoefs[:], Ratio: 2, GaindB: 0}
)

var defaultFIRCoefs = [64]int16{
	-15, -27, -23, -6, 17, 33, 31, 9,
	-23, -47, -45, -13, 34, 69, 67, 21,
	-49, -102, -99, -32, 69, 146, 143, 48,
	-96, -204, -200, -69, 131, 280, 275, 96,
	96, 275, 280, 131, -69, -200, -204, -96,
	48, 143, 146, 69, -32, -99, -102, -49,
	21, 67, 69, 34, -13, -45, -47, -23,
	9, 31, 33, 17, -6, -23, -27, -15,
}

// SetFIRConfig loads one direction's FIR filter: configuration word first,
// then every coefficient through the write-index registers.
func (p *Phy) SetFIRConfig(cfg FIRConfig) error {
	if len(cfg.Coefs) == 0 || len(cfg.Coefs) > 128 {
		return fmt.Errorf("invalid FIR length %d", len(cfg.Coefs))
	}

	confReg, addrReg, lsbReg, msbReg := regRxFIRConfig, regRxFIRCoefAddr, regRxFIRCoefWriteLSB, regRxFIRCoefWriteMSB
	if cfg.Path == PathTX {
		confReg, addrReg, lsbReg, msbReg = regTxFIRConfig, regTxFIRCoefAddr, regTxFIRCoefWriteLSB, regTxFIRCoefWriteMSB
	}

	// Config word: tap count in 16-tap units, ratio, gain step.
	conf := uint8((len(cfg.Coefs)/16-1)&0x7) << 5
	if cfg.Ratio == 4 {
		conf |= 1 << 4
	}
	conf |= uint8((-cfg.GaindB)/6) & 0x3
	if err := p.WriteReg(confReg, conf); err != nil {
		return fmt.Errorf("write %s FIR config: %w", cfg.Path, err)
	}

	for i, c := range cfg.Coefs {
		if err := p.WriteReg(addrReg, uint8(i)); err != nil {
			return fmt.Errorf("write %s FIR coef addr %d: %w", cfg.Path, i, err)
		}
		if err := p.WriteReg(lsbReg, uint8(uint16(c))); err != nil {
			return fmt.Errorf("write %s FIR coef %d LSB: %w", cfg.Path, i, err)
		}
		if err := p.WriteReg(msbReg, uint8(uint16(c)>>8)); err != nil {
			return fmt.Errorf("write %s FIR coef %d MSB: %w", cfg.Path, i, err)
		}
	}
	return nil
}
