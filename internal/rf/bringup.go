package rf

import (
	"context"
	"fmt"
	"io"
	"time"

	"periph.io/x/conn/v3/i2c"

	"github.com/rjboer/GoM2SDR/internal/ad9361"
	"github.com/rjboer/GoM2SDR/internal/calib"
	"github.com/rjboer/GoM2SDR/internal/dsp"
	"github.com/rjboer/GoM2SDR/internal/logging"
	"github.com/rjboer/GoM2SDR/internal/si5351"
	"github.com/rjboer/GoM2SDR/litepcie"
)

// SPIMaster is the link-mode control of the gateware's SPI engine.
type SPIMaster interface {
	Init(manualCS bool)
}

// SampleSource delivers raw interleaved IQ samples from the RX DMA stream;
// only the optional tone check uses it.
type SampleSource interface {
	ReadSamples(n int) ([]int16, error)
}

// Deps are the hardware collaborators of one bring-up. Regs, I2C, SPI and
// Phy are required; Samples may be nil when no tone check is requested.
type Deps struct {
	Regs    litepcie.RegIO
	I2C     i2c.Bus
	SPI     SPIMaster
	Phy     Transceiver
	Samples SampleSource

	Out    io.Writer       // scan tables and diagnostics, io.Discard when nil
	Log    *logging.Logger // step banners, logging.Discard when nil
	Settle time.Duration   // per-cell scan settle override, 0 = default
}

// toneCheckSamples is the DMA burst length for the optional tone check,
// sized for a 2048-point FFT per channel in 2T2R framing.
const toneCheckSamples = 8192

// BringUp runs the full RF bring-up in its fixed order. Every step only
// makes sense on top of the hardware state the previous one left behind;
// do not reorder. ctx is consulted between steps only: an in-flight delay
// scan always completes. There is no rollback; an aborted bring-up leaves
// the hardware at the last completed step.
func BringUp(ctx context.Context, deps Deps, cfg Config) error {
	out := deps.Out
	if out == nil {
		out = io.Discard
	}
	log := deps.Log
	if log == nil {
		log = logging.Discard()
	}

	log.Infof("Initializing SI5351 clocking to %.1fMHz...", float64(cfg.RefClkFreq)/1e6)
	if err := si5351.Program(deps.I2C, si5351.I2CAddr, si5351.RefClk38p4Config); err != nil {
		return fmt.Errorf("program SI5351: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	log.Infof("Initializing AD9361 SPI...")
	deps.SPI.Init(true)

	log.Infof("Initializing AD9361 RFIC...")
	if err := deps.Phy.Init(ad9361.InitParams{
		ResetGPIO:  0,
		SyncGPIO:   -1,
		CalSw1GPIO: -1,
		CalSw2GPIO: -1,
		RefClkHz:   cfg.RefClkFreq,
		TwoRxTwoTx: twoRxTwoTx,
	}); err != nil {
		return fmt.Errorf("initialize AD9361: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Oversampling disables the FIR decimation by 2, so the transceiver
	// itself runs at half the requested rate.
	rate := cfg.SampleRate
	log.Infof("Setting TX/RX samplerate to %.2f MSPS.", float64(rate)/1e6)
	if cfg.Oversample {
		rate /= 2
	}
	if err := deps.Phy.SetSamplingFreq(rate, cfg.RefClkFreq); err != nil {
		return fmt.Errorf("set samplerate: %w", err)
	}

	log.Infof("Setting TX/RX bandwidth to %.2f MHz.", float64(cfg.Bandwidth)/1e6)
	if err := deps.Phy.SetRFBandwidth(ad9361.PathRX, cfg.Bandwidth); err != nil {
		return fmt.Errorf("set RX bandwidth: %w", err)
	}
	if err := deps.Phy.SetRFBandwidth(ad9361.PathTX, cfg.Bandwidth); err != nil {
		return fmt.Errorf("set TX bandwidth: %w", err)
	}

	log.Infof("Setting TX LO freq to %.2f MHz.", float64(cfg.TxFreq)/1e6)
	log.Infof("Setting RX LO freq to %.2f MHz.", float64(cfg.RxFreq)/1e6)
	if err := deps.Phy.SetLOFreq(ad9361.PathTX, cfg.TxFreq, cfg.RefClkFreq); err != nil {
		return fmt.Errorf("set TX LO: %w", err)
	}
	if err := deps.Phy.SetLOFreq(ad9361.PathRX, cfg.RxFreq, cfg.RefClkFreq); err != nil {
		return fmt.Errorf("set RX LO: %w", err)
	}

	if err := deps.Phy.SetFIRConfig(ad9361.DefaultTxFIR); err != nil {
		return fmt.Errorf("load TX FIR: %w", err)
	}
	if err := deps.Phy.SetFIRConfig(ad9361.DefaultRxFIR); err != nil {
		return fmt.Errorf("load RX FIR: %w", err)
	}

	// TX gain arrives in dB; the attenuator wants inverted milli-dB.
	log.Infof("Setting TX gain to %d dB.", cfg.TxGain)
	for ch := 1; ch <= 2; ch++ {
		if err := deps.Phy.SetAtten(ch, -cfg.TxGain*1000); err != nil {
			return fmt.Errorf("set TX%d attenuation: %w", ch, err)
		}
	}

	log.Infof("Setting RX gain to %d dB.", cfg.RxGain)
	for ch := 1; ch <= 2; ch++ {
		if err := deps.Phy.SetRXGain(ch, cfg.RxGain); err != nil {
			return fmt.Errorf("set RX%d gain: %w", ch, err)
		}
	}

	log.Infof("Setting loopback to %d", cfg.Loopback)
	if err := deps.Phy.SetBISTLoopback(cfg.Loopback != 0); err != nil {
		return fmt.Errorf("set loopback: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.EightBitMode {
		log.Infof("Enabling 8-bit mode.")
		deps.Regs.WriteL(litepcie.CSRAD9361BitMode, 1)
	} else {
		log.Infof("Enabling 16-bit mode.")
		deps.Regs.WriteL(litepcie.CSRAD9361BitMode, 0)
	}

	deps.Regs.WriteL(litepcie.CSRAD9361PhyControl, phyChannelMode)

	if cfg.BISTTxTone {
		log.Infof("BIST_TX_TONE_TEST...")
		sel := toneSel(cfg.BISTToneFreq, rate)
		if err := deps.Phy.SetBISTTone(ad9361.InjTX, sel, 0, 0x0); err != nil {
			return fmt.Errorf("enable TX BIST tone: %w", err)
		}
	}

	if cfg.BISTRxTone {
		log.Infof("BIST_RX_TONE_TEST...")
		sel := toneSel(cfg.BISTToneFreq, rate)
		if err := deps.Phy.SetBISTTone(ad9361.InjRX, sel, 0, 0x0); err != nil {
			return fmt.Errorf("enable RX BIST tone: %w", err)
		}
		if cfg.ToneCheck {
			if err := checkRXTone(deps, sel, rate, log); err != nil {
				return err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.BISTPRBS {
		fmt.Fprintf(out, "BIST_PRBS TEST...\n")
		hw := &prbsHardware{phy: deps.Phy, regs: deps.Regs}
		cal := &calib.Calibrator{
			Scanner: &calib.Scanner{Prober: hw, Settle: deps.Settle, Out: out},
			Phy:     hw,
			Fabric:  hw,
		}
		if _, _, err := cal.Run(); err != nil {
			return fmt.Errorf("PRBS calibration: %w", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if cfg.Oversample {
		log.Infof("Applying oversample register overrides.")
		if err := applyOversampleRecipe(deps.Phy); err != nil {
			return fmt.Errorf("apply oversample recipe: %w", err)
		}
	}

	return nil
}

// toneSel quantizes a tone frequency request to the BIST generator's
// Fs/32-step select, clamped to its 2-bit range.
func toneSel(freqHz int32, sampleRate uint32) int {
	if freqHz <= 0 || sampleRate == 0 {
		return 0
	}
	step := int64(sampleRate) / 32
	if step == 0 {
		return 0
	}
	sel := (int64(freqHz) + step/2) / step
	if sel < 0 {
		sel = 0
	}
	if sel > 3 {
		sel = 3
	}
	return int(sel)
}

// checkRXTone captures a short DMA burst and verifies the injected tone
// lands on the expected FFT bin. Failure is a warning, not a fault: the
// check shares the data path with everything the scan just touched.
func checkRXTone(deps Deps, sel int, sampleRate uint32, log *logging.Logger) error {
	if deps.Samples == nil {
		return fmt.Errorf("tone check requested without a sample source")
	}
	raw, err := deps.Samples.ReadSamples(toneCheckSamples)
	if err != nil {
		return fmt.Errorf("capture tone check burst: %w", err)
	}
	iq := dsp.IQFromInterleaved(raw, 2, 0)
	wantHz := float64(sel) * float64(sampleRate) / 32
	peakHz, ok := dsp.VerifyTone(iq, float64(sampleRate), wantHz)
	if ok {
		log.Infof("RX tone check: peak at %.0f Hz (expected %.0f Hz).", peakHz, wantHz)
	} else {
		log.Warnf("RX tone check: peak at %.0f Hz, expected %.0f Hz.", peakHz, wantHz)
	}
	return nil
}
