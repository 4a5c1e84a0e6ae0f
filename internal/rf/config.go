// Package rf sequences the M2SDR RF bring-up: reference clock, transceiver
// configuration, digital interface mode, and the optional BIST diagnostics
// including the PRBS interface-timing calibration.
package rf

import "github.com/rjboer/GoM2SDR/internal/ad9361"

// Default bring-up parameters, matching the values the board ships with.
const (
	DefaultRefClkFreq   int64  = 38_400_000
	DefaultSampleRate   uint32 = 30_720_000
	DefaultBandwidth    int64  = 56_000_000
	DefaultTxFreq       int64  = 2_400_000_000
	DefaultRxFreq       int64  = 2_400_000_000
	DefaultTxGain       int64  = -20
	DefaultRxGain       int64  = 0
	DefaultLoopback     uint8  = 0
	DefaultBISTToneFreq int32  = 1_000_000
)

// Config is the full parameter set of one bring-up. It is immutable for
// the duration of the sequence; the CLI fills it in and hands it over.
type Config struct {
	SampleRate uint32 // requested rate in SPS, before oversample halving
	Bandwidth  int64  // RF bandwidth in Hz, TX and RX
	RefClkFreq int64  // reference clock in Hz
	TxFreq     int64  // TX LO in Hz
	RxFreq     int64  // RX LO in Hz
	TxGain     int64  // TX gain in dB (negative = attenuation)
	RxGain     int64  // RX gain in dB, applied to both channels
	Loopback   uint8  // transceiver-internal loopback mode

	EightBitMode bool
	Oversample   bool

	BISTTxTone   bool
	BISTRxTone   bool
	BISTPRBS     bool
	BISTToneFreq int32 // tone frequency in Hz for the tone tests
	ToneCheck    bool  // capture a DMA burst and verify the RX tone
}

// DefaultConfig returns a Config carrying the board defaults.
func DefaultConfig() Config {
	return Config{
		SampleRate:   DefaultSampleRate,
		Bandwidth:    DefaultBandwidth,
		RefClkFreq:   DefaultRefClkFreq,
		TxFreq:       DefaultTxFreq,
		RxFreq:       DefaultRxFreq,
		TxGain:       DefaultTxGain,
		RxGain:       DefaultRxGain,
		Loopback:     DefaultLoopback,
		BISTToneFreq: DefaultBISTToneFreq,
	}
}

// Transceiver is the transceiver control surface the sequencer programs
// against. *ad9361.Phy implements it; tests supply a recorder.
type Transceiver interface {
	Init(ad9361.InitParams) error
	SetSamplingFreq(hz uint32, refClkHz int64) error
	SetRFBandwidth(path ad9361.Path, hz int64) error
	SetLOFreq(path ad9361.Path, hz, refClkHz int64) error
	SetFIRConfig(cfg ad9361.FIRConfig) error
	SetAtten(ch int, milliDB int64) error
	SetRXGain(ch int, gainDB int64) error
	SetBISTLoopback(enable bool) error
	SetBISTTone(inj ad9361.Injection, freqSel, levelSel int, channelMask uint8) error
	SetBISTPRBS(inj ad9361.Injection) error
	SetClockDataDelays(path ad9361.Path, clk, dat int) error
	WriteReg(reg uint16, val uint8) error
}

var _ Transceiver = (*ad9361.Phy)(nil)
