// m2sdr_rf initializes and configures the RF front-end of an M2SDR board:
// reference clock, AD9361 bring-up, digital interface mode, and the
// optional BIST diagnostics including the PRBS interface-timing
// calibration.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/rjboer/GoM2SDR/internal/ad9361"
	"github.com/rjboer/GoM2SDR/internal/logging"
	"github.com/rjboer/GoM2SDR/internal/rf"
	"github.com/rjboer/GoM2SDR/litepcie"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatal(err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		deviceNum int
		logLevel  string
		cfg       = rf.DefaultConfig()
	)

	cmd := &cobra.Command{
		Use:           "m2sdr_rf",
		Short:         "M2SDR RF init/config utility",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := logging.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			return run(cmd.Context(), deviceNum, cfg, level)
		},
	}

	f := cmd.Flags()
	f.IntVarP(&deviceNum, "device", "c", 0, "Select the device")
	f.StringVar(&logLevel, "log_level", "info", "Log level (debug, info, warn, error)")
	f.Int64Var(&cfg.RefClkFreq, "refclk_freq", rf.DefaultRefClkFreq, "RefClk frequency in Hz")
	f.Uint32Var(&cfg.SampleRate, "samplerate", rf.DefaultSampleRate, "RF samplerate in SPS")
	f.Int64Var(&cfg.Bandwidth, "bandwidth", rf.DefaultBandwidth, "RF bandwidth in Hz")
	f.Int64Var(&cfg.TxFreq, "tx_freq", rf.DefaultTxFreq, "TX (TX1/2) frequency in Hz")
	f.Int64Var(&cfg.RxFreq, "rx_freq", rf.DefaultRxFreq, "RX (RX1/2) frequency in Hz")
	f.Int64Var(&cfg.TxGain, "tx_gain", rf.DefaultTxGain, "TX gain in dB")
	f.Int64Var(&cfg.RxGain, "rx_gain", rf.DefaultRxGain, "RX gain in dB")
	f.Uint8Var(&cfg.Loopback, "loopback", rf.DefaultLoopback, "Internal loopback mode")
	f.BoolVar(&cfg.EightBitMode, "8bit", false, "Enable 8-bit mode")
	f.BoolVar(&cfg.Oversample, "oversample", false, "Enable oversample mode")
	f.BoolVar(&cfg.BISTTxTone, "bist_tx_tone", false, "Run TX tone test")
	f.BoolVar(&cfg.BISTRxTone, "bist_rx_tone", false, "Run RX tone test")
	f.BoolVar(&cfg.BISTPRBS, "bist_prbs", false, "Run PRBS test")
	f.Int32Var(&cfg.BISTToneFreq, "bist_tone_freq", rf.DefaultBISTToneFreq, "BIST tone frequency in Hz")
	f.BoolVar(&cfg.ToneCheck, "bist_tone_check", false, "Verify the RX tone against a DMA capture")

	return cmd
}

func run(ctx context.Context, deviceNum int, cfg rf.Config, level logging.Level) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	dev, err := litepcie.Open(deviceNum)
	if err != nil {
		return fmt.Errorf("could not init driver: %w", err)
	}
	defer dev.Close()

	spi := litepcie.NewSPI(dev)
	deps := rf.Deps{
		Regs:    dev,
		I2C:     litepcie.NewI2C(dev),
		SPI:     spi,
		Phy:     ad9361.NewPhy(spi),
		Samples: dev,
		Out:     os.Stdout,
		Log:     logging.New(level, os.Stdout),
	}
	return rf.BringUp(ctx, deps, cfg)
}
